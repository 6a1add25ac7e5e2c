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

package transport

import (
	"gitlab.com/tozd/go/errors"
)

var (
	// ⏱️ ErrTimeout means the capability did not finish within the configured duration
	ErrTimeout = errors.Base("transfer timed out")

	// 🧩 ErrMalformedInput means a URL or item attribute could not be used
	ErrMalformedInput = errors.Base("malformed input")
)

// ❌ TransferError wraps a rejection from the download capability
type TransferError struct {
	Source      string
	Destination string
	Err         error
}

func (e *TransferError) Error() string {
	return "transferring " + e.Source + " to " + e.Destination + ": " + e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
