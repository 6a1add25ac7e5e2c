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
	"bytes"
	"context"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses an override from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Override, error) {
	type yamlConfig struct {
		Content *struct {
			HTML  *bool `yaml:"html"`
			Text  *bool `yaml:"text"`
			Image *bool `yaml:"image"`
			Video *bool `yaml:"video"`
		} `yaml:"content"`
		PathTemplate *string  `yaml:"path_template"`
		Timeout      *string  `yaml:"timeout"`
		Cache        *bool    `yaml:"cache"`
		Ignore       []string `yaml:"ignore"`
	}

	var yamlCfg yamlConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&yamlCfg); err != nil && err != io.EOF {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	timeout, err := parseTimeout(yamlCfg.Timeout)
	if err != nil {
		return nil, err
	}

	o := &Override{
		PathTemplate: yamlCfg.PathTemplate,
		Timeout:      timeout,
		Cache:        yamlCfg.Cache,
		Ignore:       yamlCfg.Ignore,
	}
	if c := yamlCfg.Content; c != nil {
		o.Content = &ContentOverride{HTML: c.HTML, Text: c.Text, Image: c.Image, Video: c.Video}
	}
	return o, nil
}
