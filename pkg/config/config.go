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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultPathTemplate groups downloads by publish month and author
const DefaultPathTemplate = "./wbg/$year$month/$author/"

// DefaultTimeout bounds a single transfer
const DefaultTimeout = 5 * time.Minute

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses an override from bytes
	Parse(ctx context.Context, data []byte) (*Override, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Content selects which parts of an item are downloaded
type Content struct {
	HTML  bool
	Text  bool
	Image bool
	Video bool
}

// 📚 Config is the effective downloader configuration
type Config struct {
	Content      Content
	PathTemplate string        // Destination directory template, relative to the output root
	Timeout      time.Duration // Per-transfer timeout
	Cache        bool          // Deduplicate repeated sources
	Ignore       []string      // Doublestar globs of destinations to skip
}

// 🎛️ ContentOverride is the partial form of Content. Nil fields are absent.
type ContentOverride struct {
	HTML  *bool
	Text  *bool
	Image *bool
	Video *bool
}

// 🎛️ Override is a partial Config layered on top of another by Merge
type Override struct {
	Content      *ContentOverride
	PathTemplate *string
	Timeout      *time.Duration
	Cache        *bool
	Ignore       []string // nil is absent, empty clears
}

// 🏭 Default returns the built in configuration
func Default() Config {
	return Config{
		Content: Content{
			HTML:  true,
			Text:  true,
			Image: true,
			Video: true,
		},
		PathTemplate: DefaultPathTemplate,
		Timeout:      DefaultTimeout,
		Cache:        true,
	}
}

// 🔀 Merge overlays overrides on base from left to right. Later values win.
// base is not modified.
func Merge(base Config, overrides ...*Override) Config {
	out := base
	out.Ignore = append([]string(nil), base.Ignore...)

	for _, o := range overrides {
		if o == nil {
			continue
		}
		if o.Content != nil {
			setBool(&out.Content.HTML, o.Content.HTML)
			setBool(&out.Content.Text, o.Content.Text)
			setBool(&out.Content.Image, o.Content.Image)
			setBool(&out.Content.Video, o.Content.Video)
		}
		if o.PathTemplate != nil {
			out.PathTemplate = *o.PathTemplate
		}
		if o.Timeout != nil {
			out.Timeout = *o.Timeout
		}
		setBool(&out.Cache, o.Cache)
		if o.Ignore != nil {
			out.Ignore = append([]string{}, o.Ignore...)
		}
	}
	return out
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// 🔍 Validate checks if the configuration is usable
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.PathTemplate) == "" {
		return errors.Errorf("path_template is required")
	}
	if cfg.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// 📝 String returns a string representation of the config
func (cfg Config) String() string {
	var kinds []string
	for _, k := range []struct {
		name string
		on   bool
	}{
		{"text", cfg.Content.Text},
		{"html", cfg.Content.HTML},
		{"image", cfg.Content.Image},
		{"video", cfg.Content.Video},
	} {
		if k.on {
			kinds = append(kinds, k.name)
		}
	}
	if len(kinds) == 0 {
		kinds = []string{"none"}
	}
	return fmt.Sprintf("[%s] -> %s (timeout %s, cache %t)", strings.Join(kinds, ","), cfg.PathTemplate, cfg.Timeout, cfg.Cache)
}

// 🔍 Validate checks the values an override sets
func (o *Override) Validate() error {
	if o.PathTemplate != nil && strings.TrimSpace(*o.PathTemplate) == "" {
		return errors.Errorf("path_template must not be empty")
	}
	if o.Timeout != nil && *o.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %s", *o.Timeout)
	}
	for _, pattern := range o.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// 🎯 Load reads an override file. The format follows the file extension;
// a bare .feedgrab file may hold either YAML or HCL.
func Load(ctx context.Context, path string) (*Override, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var o *Override
	if filepath.Base(path) == ".feedgrab" {
		o, err = (&YAMLParser{}).Parse(ctx, data)
		if err != nil {
			logger.Debug().Err(err).Msg("not yaml, trying hcl")
			o, err = (&HCLParser{}).Parse(ctx, data)
		}
		if err != nil {
			return nil, errors.Errorf("parsing .feedgrab as YAML or HCL: %w", err)
		}
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", path)
		}
		o, err = p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
	}

	if err := o.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return o, nil
}

// parseTimeout converts an optional duration string
func parseTimeout(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return nil, errors.Errorf("parsing timeout %q: %w", *s, err)
	}
	return &d, nil
}
