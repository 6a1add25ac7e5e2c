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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses an override from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Override, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "feedgrab.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Variables available to expressions in the file
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_path_template": cty.StringVal(DefaultPathTemplate),
		},
	}

	type hclContent struct {
		HTML  *bool `hcl:"html,optional"`
		Text  *bool `hcl:"text,optional"`
		Image *bool `hcl:"image,optional"`
		Video *bool `hcl:"video,optional"`
	}

	type hclConfig struct {
		Content      *hclContent `hcl:"content,block"`
		PathTemplate *string     `hcl:"path_template,optional"`
		Timeout      *string     `hcl:"timeout,optional"`
		Cache        *bool       `hcl:"cache,optional"`
		Ignore       []string    `hcl:"ignore,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	timeout, err := parseTimeout(hclCfg.Timeout)
	if err != nil {
		return nil, err
	}

	o := &Override{
		PathTemplate: hclCfg.PathTemplate,
		Timeout:      timeout,
		Cache:        hclCfg.Cache,
		Ignore:       hclCfg.Ignore,
	}
	if c := hclCfg.Content; c != nil {
		o.Content = &ContentOverride{HTML: c.HTML, Text: c.Text, Image: c.Image, Video: c.Video}
	}
	return o, nil
}
