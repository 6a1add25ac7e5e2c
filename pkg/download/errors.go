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

package download

import (
	"fmt"
	"strings"
)

// 🧩 KindError holds every failure of one content kind
type KindError struct {
	Kind Kind
	Errs []error
}

func (e *KindError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(msgs, "; "))
}

func (e *KindError) Unwrap() []error {
	return e.Errs
}

// 💥 PartialFailure reports an item whose kinds did not all succeed.
// Kinds not listed completed normally.
type PartialFailure struct {
	Ref    Ref
	Failed []*KindError
}

func (e *PartialFailure) Error() string {
	msgs := make([]string, len(e.Failed))
	for i, k := range e.Failed {
		msgs[i] = k.Error()
	}
	return fmt.Sprintf("downloading %s: %d part(s) failed: %s", e.Ref, len(e.Failed), strings.Join(msgs, " | "))
}

func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, k := range e.Failed {
		errs[i] = k
	}
	return errs
}

// Kinds returns the kinds that failed, in kind order
func (e *PartialFailure) Kinds() []Kind {
	kinds := make([]Kind, len(e.Failed))
	for i, k := range e.Failed {
		kinds[i] = k.Kind
	}
	return kinds
}
