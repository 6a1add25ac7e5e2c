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

// Package pathtmpl expands destination path templates.
//
// A template is a slash-separated path relative to a base directory. It may
// contain placeholders written as $name or $(name), where name is made of
// ASCII letters, digits and underscores. A literal dollar sign is written $$.
//
//	base:     ./wbg/$year$month/$author/
//	template: ./$id/$(id)_cover.jpg
//	result:   wbg/202401/1669879400/4987/4987_cover.jpg
//
// The expanded path is sanitized as a whole, separators included.
package pathtmpl

import (
	"path"
	"regexp"
	"strings"

	"github.com/walteh/feedgrab/pkg/sanitize"
)

// 🔌 Params supplies placeholder values. Unknown names must resolve to "".
type Params interface {
	Resolve(name string) string
}

// Static is a fixed set of params, mostly useful for tests and one-off paths.
type Static map[string]string

// Resolve implements Params.
func (s Static) Resolve(name string) string {
	return s[name]
}

// $$ is listed first so an escaped dollar never starts a placeholder.
var token = regexp.MustCompile(`\$(?:\$|\((\w+)\)|(\w+))`)

// 🗺️ Resolver expands templates against a fixed base directory
type Resolver struct {
	base      string
	sanitizer *sanitize.Sanitizer
}

// 🏭 New creates a resolver rooted at basePath. A trailing slash is implied.
func New(basePath string, sanitizer *sanitize.Sanitizer) *Resolver {
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	return &Resolver{
		base:      rooted(basePath),
		sanitizer: sanitizer,
	}
}

// Base returns the normalized base directory without its leading slash.
func (r *Resolver) Base() string {
	return strings.TrimPrefix(r.base, "/")
}

// 🎯 Resolve joins template onto the base, substitutes placeholders and
// sanitizes the result.
func (r *Resolver) Resolve(template string, params Params) string {
	return r.sanitizer.Sanitize(Expand(r.Join(template), params))
}

// Join resolves template relative to the base like a relative URL reference:
// dot segments collapse, and a template starting with "/" replaces the base.
func (r *Resolver) Join(template string) string {
	var joined string
	if strings.HasPrefix(template, "/") {
		joined = path.Clean(template)
	} else {
		joined = path.Join(r.base, template)
	}
	if strings.HasSuffix(template, "/") && joined != "/" {
		joined += "/"
	}
	return strings.TrimPrefix(joined, "/")
}

// Expand substitutes placeholders in a single left-to-right pass. Values are
// inserted verbatim, so "$$" inside a value is never collapsed.
func Expand(s string, params Params) string {
	return token.ReplaceAllStringFunc(s, func(match string) string {
		if match == "$$" {
			return "$"
		}
		sub := token.FindStringSubmatch(match)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		if params == nil {
			return ""
		}
		return params.Resolve(name)
	})
}

// Escape quotes every "$" in s so it survives expansion literally.
func Escape(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func rooted(base string) string {
	cleaned := path.Clean("/" + base)
	if cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}
