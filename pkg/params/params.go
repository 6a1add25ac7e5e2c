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
	"strconv"
	"strings"
	"sync"
	"time"
)

// 📰 Fields is the subset of an item the resolver reads
type Fields interface {
	// ID returns the item identifier
	ID() string
	// AuthorIDs returns author identifiers, first one wins
	AuthorIDs() []string
	// Timestamps returns publish times as epoch milliseconds, first one wins
	Timestamps() []string
}

// 🏷️ Param is a recognized placeholder name
type Param int

const (
	ParamUnknown Param = iota
	ParamID
	ParamAuthor
	ParamYear
	ParamMonth

	paramCount
)

// String returns the canonical placeholder name
func (p Param) String() string {
	switch p {
	case ParamID:
		return "id"
	case ParamAuthor:
		return "author"
	case ParamYear:
		return "year"
	case ParamMonth:
		return "month"
	default:
		return "unknown"
	}
}

// Parse maps a placeholder name to a Param. "mid" is accepted for the id.
func Parse(name string) Param {
	switch name {
	case "id", "mid":
		return ParamID
	case "author":
		return ParamAuthor
	case "year":
		return ParamYear
	case "month":
		return ParamMonth
	default:
		return ParamUnknown
	}
}

// Dates are always bucketed in China Standard Time, never the local zone.
var publishZone = time.FixedZone("UTC+8", 8*60*60)

// 🗂️ Resolver computes params for one item lazily and remembers them.
// It is safe for concurrent use and is never invalidated.
type Resolver struct {
	fields Fields

	mu       sync.Mutex
	resolved [paramCount]bool
	values   [paramCount]string
}

// 🏭 New binds a resolver to one item
func New(fields Fields) *Resolver {
	return &Resolver{fields: fields}
}

// 🎯 Resolve returns the value for name, or "" for unknown names
func (r *Resolver) Resolve(name string) string {
	p := Parse(name)
	if p == ParamUnknown {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved[p] {
		return r.values[p]
	}
	v := r.compute(p)
	r.values[p] = v
	r.resolved[p] = true
	return v
}

func (r *Resolver) compute(p Param) string {
	switch p {
	case ParamID:
		return r.fields.ID()
	case ParamAuthor:
		return first(r.fields.AuthorIDs())
	case ParamYear:
		if t, ok := r.published(); ok {
			return t.Format("2006")
		}
	case ParamMonth:
		if t, ok := r.published(); ok {
			return t.Format("01")
		}
	}
	return ""
}

func (r *Resolver) published() (time.Time, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(first(r.fields.Timestamps())), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).In(publishZone), true
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
