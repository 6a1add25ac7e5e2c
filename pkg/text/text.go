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

// Package text prepares plain-text exports.
package text

import (
	"strings"
)

// ByteOrderMark prefixes every text export so editors pick UTF-8
const ByteOrderMark = "\ufeff"

// 🔄 ReplacementRule swaps every occurrence of FromText for ToText
type ReplacementRule struct {
	FromText string
	ToText   string
}

// 📊 ReplacementResult describes what Replace changed
type ReplacementResult struct {
	Content          string
	ReplacementCount int
	WasModified      bool
}

// LineEndingRules turn CR, LF and CRLF into CRLF. A line separator keeps its
// character after the inserted CRLF.
var LineEndingRules = []ReplacementRule{
	{FromText: "\r\n", ToText: "\r\n"},
	{FromText: "\r", ToText: "\r\n"},
	{FromText: "\n", ToText: "\r\n"},
	{FromText: "\u2028", ToText: "\r\n\u2028"},
}

// 🔁 Replace applies all rules in one left-to-right pass. At each position the
// first matching rule wins and its output is never matched again.
func Replace(content string, rules []ReplacementRule) *ReplacementResult {
	result := &ReplacementResult{Content: content}

	var b strings.Builder
	b.Grow(len(content))

	for i := 0; i < len(content); {
		matched := false
		for _, rule := range rules {
			if rule.FromText == "" || !strings.HasPrefix(content[i:], rule.FromText) {
				continue
			}
			b.WriteString(rule.ToText)
			i += len(rule.FromText)
			if rule.FromText != rule.ToText {
				result.ReplacementCount++
			}
			matched = true
			break
		}
		if !matched {
			b.WriteByte(content[i])
			i++
		}
	}

	if result.ReplacementCount > 0 {
		result.Content = b.String()
		result.WasModified = true
	}
	return result
}

// NormalizeLineEndings converts every line break to CRLF
func NormalizeLineEndings(s string) string {
	return Replace(s, LineEndingRules).Content
}

// 📝 Export renders plain text as written to disk: BOM, then CRLF line endings
func Export(plain string) []byte {
	return []byte(ByteOrderMark + NormalizeLineEndings(plain))
}
