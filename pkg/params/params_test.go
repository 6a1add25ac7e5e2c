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

package params

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFields struct {
	mu         sync.Mutex
	id         string
	authors    []string
	timestamps []string
	calls      map[string]int
}

func (f *fakeFields) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeFields) ID() string {
	f.count("id")
	return f.id
}

func (f *fakeFields) AuthorIDs() []string {
	f.count("author")
	return f.authors
}

func (f *fakeFields) Timestamps() []string {
	f.count("timestamps")
	return f.timestamps
}

func TestResolve(t *testing.T) {
	// 2023-12-31T17:30:00Z is already 2024-01-01 in UTC+8
	fields := &fakeFields{
		id:         "4987",
		authors:    []string{"1669879400", "999"},
		timestamps: []string{"1704043800000"},
	}

	tests := []struct {
		name string
		want string
	}{
		{name: "id", want: "4987"},
		{name: "mid", want: "4987"},
		{name: "author", want: "1669879400"},
		{name: "year", want: "2024"},
		{name: "month", want: "01"},
		{name: "day", want: ""},
		{name: "", want: ""},
	}

	r := New(fields)
	for _, tt := range tests {
		t.Run("param_"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.name))
		})
	}
}

func TestResolveMemoizes(t *testing.T) {
	fields := &fakeFields{
		id:         "1",
		authors:    []string{"a"},
		timestamps: []string{"1700000000000"},
	}
	r := New(fields)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve("id")
			r.Resolve("mid")
			r.Resolve("author")
			r.Resolve("year")
			r.Resolve("month")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fields.calls["id"], "id should be computed once")
	assert.Equal(t, 1, fields.calls["author"], "author should be computed once")
	assert.Equal(t, 2, fields.calls["timestamps"], "year and month are computed once each")
}

func TestResolveMissingFields(t *testing.T) {
	r := New(&fakeFields{timestamps: []string{"not-a-number"}})
	assert.Equal(t, "", r.Resolve("author"))
	assert.Equal(t, "", r.Resolve("year"))
	assert.Equal(t, "", r.Resolve("month"))
	assert.Equal(t, "", r.Resolve("id"))
}

func TestParamString(t *testing.T) {
	assert.Equal(t, "id", Parse("mid").String())
	assert.Equal(t, "month", ParamMonth.String())
	assert.Equal(t, "unknown", Parse("nope").String())
}
