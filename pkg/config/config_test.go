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

package config

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Content{HTML: true, Text: true, Image: true, Video: true}, cfg.Content)
	assert.Equal(t, "./wbg/$year$month/$author/", cfg.PathTemplate)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.True(t, cfg.Cache)
	assert.Empty(t, cfg.Ignore)
	require.NoError(t, cfg.Validate())
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name      string
		overrides []*Override
		check     func(t *testing.T, cfg Config)
	}{
		{
			name: "no_overrides",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "nil_override_skipped",
			overrides: []*Override{nil},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "partial_content",
			overrides: []*Override{
				{Content: &ContentOverride{Video: ptr(false)}},
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Content{HTML: true, Text: true, Image: true, Video: false}, cfg.Content)
				assert.Equal(t, DefaultPathTemplate, cfg.PathTemplate)
			},
		},
		{
			name: "right_biased",
			overrides: []*Override{
				{PathTemplate: ptr("./a/"), Timeout: ptr(time.Second), Cache: ptr(false)},
				{PathTemplate: ptr("./b/")},
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "./b/", cfg.PathTemplate)
				assert.Equal(t, time.Second, cfg.Timeout, "earlier value survives when later is absent")
				assert.False(t, cfg.Cache)
			},
		},
		{
			name: "ignore_replaced_then_cleared",
			overrides: []*Override{
				{Ignore: []string{"**/*.gif"}},
				{Ignore: []string{}},
			},
			check: func(t *testing.T, cfg Config) {
				assert.NotNil(t, cfg.Ignore)
				assert.Empty(t, cfg.Ignore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Merge(Default(), tt.overrides...))
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	base := Default()
	base.Ignore = []string{"a"}
	o := &Override{Ignore: []string{"b"}}

	merged := Merge(base, o)
	merged.Ignore[0] = "changed"

	assert.Equal(t, []string{"a"}, base.Ignore)
	assert.Equal(t, []string{"b"}, o.Ignore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr string
	}{
		{name: "default_is_valid", modify: func(cfg *Config) {}},
		{name: "empty_template", modify: func(cfg *Config) { cfg.PathTemplate = " " }, wantErr: "path_template"},
		{name: "zero_timeout", modify: func(cfg *Config) { cfg.Timeout = 0 }, wantErr: "timeout"},
		{name: "bad_pattern", modify: func(cfg *Config) { cfg.Ignore = []string{"[x"} }, wantErr: "ignore pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString(t *testing.T) {
	cfg := Default()
	cfg.Content.HTML = false
	assert.Equal(t, "[text,image,video] -> ./wbg/$year$month/$author/ (timeout 5m0s, cache true)", cfg.String())

	cfg.Content = Content{}
	assert.Contains(t, cfg.String(), "[none]")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		check       func(t *testing.T, o *Override)
	}{
		{
			name:     "yaml",
			filename: "feedgrab.yaml",
			config: `
content:
  video: false
  html: true
path_template: ./wbg/$author/
timeout: 30s
cache: false
ignore:
  - "**/*.gif"
`,
			check: func(t *testing.T, o *Override) {
				require.NotNil(t, o.Content)
				assert.Equal(t, ptr(false), o.Content.Video)
				assert.Equal(t, ptr(true), o.Content.HTML)
				assert.Nil(t, o.Content.Text, "unset fields stay absent")
				assert.Equal(t, ptr("./wbg/$author/"), o.PathTemplate)
				assert.Equal(t, ptr(30*time.Second), o.Timeout)
				assert.Equal(t, ptr(false), o.Cache)
				assert.Equal(t, []string{"**/*.gif"}, o.Ignore)
			},
		},
		{
			name:     "empty_yaml",
			filename: "feedgrab.yml",
			config:   "",
			check: func(t *testing.T, o *Override) {
				assert.Equal(t, &Override{}, o)
			},
		},
		{
			name:     "hcl",
			filename: "feedgrab.hcl",
			config: `
content {
  text  = false
  image = true
}
path_template = "${default_path_template}$id/"
timeout       = "1m"
`,
			check: func(t *testing.T, o *Override) {
				require.NotNil(t, o.Content)
				assert.Equal(t, ptr(false), o.Content.Text)
				assert.Equal(t, ptr(true), o.Content.Image)
				assert.Nil(t, o.Content.Video)
				assert.Equal(t, ptr("./wbg/$year$month/$author/$id/"), o.PathTemplate)
				assert.Equal(t, ptr(time.Minute), o.Timeout)
				assert.Nil(t, o.Cache)
				assert.Nil(t, o.Ignore)
			},
		},
		{
			name:     "json",
			filename: "feedgrab.json",
			config:   `{"content": {"html": false}, "ignore": ["**/*.mp4"], "cache": true}`,
			check: func(t *testing.T, o *Override) {
				require.NotNil(t, o.Content)
				assert.Equal(t, ptr(false), o.Content.HTML)
				assert.Equal(t, []string{"**/*.mp4"}, o.Ignore)
				assert.Equal(t, ptr(true), o.Cache)
				assert.Nil(t, o.PathTemplate)
			},
		},
		{
			name:     "dotfile_yaml",
			filename: ".feedgrab",
			config:   "cache: false\n",
			check: func(t *testing.T, o *Override) {
				assert.Equal(t, ptr(false), o.Cache)
			},
		},
		{
			name:     "dotfile_hcl",
			filename: ".feedgrab",
			config:   "cache = false\n",
			check: func(t *testing.T, o *Override) {
				assert.Equal(t, ptr(false), o.Cache)
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    "feedgrab.yaml",
			config:      "destination: /tmp\n",
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			filename:    "feedgrab.json",
			config:      `{"repositories": []}`,
			errContains: "parsing JSON",
		},
		{
			name:        "hcl_unknown_attribute",
			filename:    "feedgrab.hcl",
			config:      `force = true`,
			errContains: "decoding HCL",
		},
		{
			name:        "bad_timeout",
			filename:    "feedgrab.yaml",
			config:      "timeout: soon\n",
			errContains: "parsing timeout",
		},
		{
			name:        "negative_timeout",
			filename:    "feedgrab.json",
			config:      `{"timeout": "-1s"}`,
			errContains: "timeout must be positive",
		},
		{
			name:        "bad_ignore_pattern",
			filename:    "feedgrab.yaml",
			config:      "ignore: ['[x']\n",
			errContains: "invalid ignore pattern",
		},
		{
			name:        "unknown_extension",
			filename:    "feedgrab.txt",
			config:      "cache: false",
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config")

			o, err := Load(ctx, path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "config.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "CONFIG.JSON", want: &JSONParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	parsers = nil
	Register(&JSONParser{})
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Nil(t, GetParser("a.yaml"))
}

// 🧪 TestPackageDoc keeps the documented override example parseable and loadable
func TestPackageDoc(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", nil, parser.ParseComments)
	require.NoError(t, err, "doc.go should parse")
	require.NotNil(t, f.Doc, "package doc should be attached")

	doc := f.Doc.Text()
	assert.Contains(t, doc, `- "**/*.gif"`)
	assert.Contains(t, doc, "path_template: ./wbg/$author/$id/")

	path := filepath.Join(t.TempDir(), ".feedgrab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content:\n  video: false\npath_template: ./wbg/$author/$id/\ntimeout: 30s\nignore:\n  - \"**/*.gif\"\n"), 0644))

	o, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.gif"}, o.Ignore)
	assert.Equal(t, 30*time.Second, *o.Timeout)
}
