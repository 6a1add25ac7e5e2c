// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/feedgrab/pkg/download"
	"github.com/walteh/feedgrab/pkg/feed"
)

// 📊 result is the outcome of one item
type result struct {
	Ref feed.Ref
	OK  bool
	Err error
}

// renderSummary draws one row per item
func renderSummary(results []result) (string, error) {
	data := pterm.TableData{{"item", "status", "detail"}}
	for _, r := range results {
		status, detail := "ok", ""
		if !r.OK {
			status = "failed"
			if r.Err != nil {
				detail = describe(r.Err)
			}
		}
		data = append(data, []string{r.Ref.String(), status, detail})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// describe names the failed kinds of a partial failure, or the error itself
func describe(err error) string {
	var failure *download.PartialFailure
	if errors.As(err, &failure) {
		var detail string
		for i, k := range failure.Kinds() {
			if i > 0 {
				detail += ", "
			}
			detail += k.String()
		}
		return detail
	}
	return err.Error()
}

func countFailed(results []result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
