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

// Package sanitize turns arbitrary strings into filesystem-safe names.
package sanitize

import (
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Placeholder replaces every rejected character.
const Placeholder = '_'

// 🚫 reserved characters are only rejected at the end of a name
const reserved = `<>:"\|?*;#`

// printable is every assigned, non-control, non-format, non-private category.
var printable = []*unicode.RangeTable{
	unicode.L,
	unicode.M,
	unicode.N,
	unicode.P,
	unicode.S,
	unicode.Z,
}

// 🧼 Sanitizer cleans filenames. The zero value is ready to use.
//
// Each instance owns the counter used for synthetic names of empty input, so
// two fresh sanitizers produce the same sequence.
type Sanitizer struct {
	defaults atomic.Int64
}

// 🏭 New creates a sanitizer with a fresh default-name counter
func New() *Sanitizer {
	return &Sanitizer{}
}

// 🧼 Sanitize returns a non-empty name that is a fixed point of itself:
// Sanitize(Sanitize(x)) == Sanitize(x).
func (s *Sanitizer) Sanitize(candidate string) string {
	current := candidate
	for {
		next := s.pass(current)
		if next == current {
			return current
		}
		current = next
	}
}

func (s *Sanitizer) pass(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))
	for _, r := range candidate {
		if Allowed(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(Placeholder)
		}
	}
	valid := b.String()

	if last, size := utf8.DecodeLastRuneInString(valid); size > 0 && strings.ContainsRune(reserved, last) {
		valid = valid[:len(valid)-size] + string(Placeholder)
	}

	if valid == "" {
		valid = s.defaultName()
	}
	return valid
}

func (s *Sanitizer) defaultName() string {
	return string(Placeholder) + strconv.FormatInt(s.defaults.Add(1), 10)
}

// Allowed reports whether r may appear anywhere in a sanitized name.
// Control, format, surrogate, private-use and unassigned codepoints are rejected.
func Allowed(r rune) bool {
	return unicode.In(r, printable...)
}
