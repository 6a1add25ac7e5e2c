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

package sanitize

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain_name",
			input: "photo.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "path_separators_survive",
			input: "wbg/202401/123/456.txt",
			want:  "wbg/202401/123/456.txt",
		},
		{
			name:  "control_characters",
			input: "a\x00b\tc\nd",
			want:  "a_b_c_d",
		},
		{
			name:  "c1_control",
			input: "a\u0085b",
			want:  "a_b",
		},
		{
			name:  "format_characters",
			input: "left\u200bright\u202e",
			want:  "left_right_",
		},
		{
			name:  "private_use",
			input: "x\ue000y",
			want:  "x_y",
		},
		{
			name:  "unassigned",
			input: "x\U000e0080y",
			want:  "x_y",
		},
		{
			name:  "cjk_and_emoji_kept",
			input: "微博📷.jpg",
			want:  "微博📷.jpg",
		},
		{
			name:  "trailing_reserved",
			input: "what?",
			want:  "what_",
		},
		{
			name:  "only_last_reserved_replaced",
			input: "a??",
			want:  "a?_",
		},
		{
			name:  "inner_reserved_kept",
			input: "a:b",
			want:  "a:b",
		},
		{
			name:  "trailing_hash",
			input: "tag#",
			want:  "tag_",
		},
		{
			name:  "trailing_control_then_reserved",
			input: "x*\x01",
			want:  "x*_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			assert.Equal(t, tt.want, s.Sanitize(tt.input))
		})
	}
}

func TestSanitizeEmpty(t *testing.T) {
	t.Run("synthetic_names_increment", func(t *testing.T) {
		s := New()
		assert.Equal(t, "_1", s.Sanitize(""))
		assert.Equal(t, "_2", s.Sanitize(""))
		assert.Equal(t, "_3", s.Sanitize(""))
	})

	t.Run("fresh_instances_agree", func(t *testing.T) {
		a, b := New(), New()
		assert.Equal(t, a.Sanitize(""), b.Sanitize(""))
	})

	t.Run("zero_value_usable", func(t *testing.T) {
		var s Sanitizer
		assert.Equal(t, "_1", s.Sanitize(""))
	})

	t.Run("counter_is_safe_concurrently", func(t *testing.T) {
		s := New()
		seen := sync.Map{}
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				name := s.Sanitize("")
				_, dup := seen.LoadOrStore(name, true)
				assert.False(t, dup, "duplicate synthetic name %q", name)
			}()
		}
		wg.Wait()
	})
}

func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"",
		"?",
		"\x00",
		"\x00\x01?",
		"a\xffb",
		"\xff",
		"normal",
		"trailing;",
		"dir/sub/",
		"\u2028 ",
		"\ufeffbom",
		"mixed\u200d\ud7ff*",
	}

	for _, in := range inputs {
		s := New()
		once := s.Sanitize(in)
		require.NotEmpty(t, once, "sanitize(%q) must not be empty", in)
		assert.Equal(t, once, s.Sanitize(once), "sanitize must be idempotent for %q", in)
		for _, r := range once {
			assert.True(t, Allowed(r), "rune %U survived in %q", r, once)
		}
	}
}
