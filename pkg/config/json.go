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
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&JSONParser{})
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse parses an override from JSON bytes
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Override, error) {
	type jsonConfig struct {
		Content *struct {
			HTML  *bool `json:"html"`
			Text  *bool `json:"text"`
			Image *bool `json:"image"`
			Video *bool `json:"video"`
		} `json:"content"`
		PathTemplate *string  `json:"path_template"`
		Timeout      *string  `json:"timeout"`
		Cache        *bool    `json:"cache"`
		Ignore       []string `json:"ignore"`
	}

	var jsonCfg jsonConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jsonCfg); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}

	timeout, err := parseTimeout(jsonCfg.Timeout)
	if err != nil {
		return nil, err
	}

	o := &Override{
		PathTemplate: jsonCfg.PathTemplate,
		Timeout:      timeout,
		Cache:        jsonCfg.Cache,
		Ignore:       jsonCfg.Ignore,
	}
	if c := jsonCfg.Content; c != nil {
		o.Content = &ContentOverride{HTML: c.HTML, Text: c.Text, Image: c.Image, Video: c.Video}
	}
	return o, nil
}
