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

// Package config holds the downloader settings and the override files that
// adjust them.
//
//	            +-------------+
//	            |   Default   |
//	            +------+------+
//	                   |  Merge(base, overrides...)
//	      +------------+------------+
//	      |            |            |
//	+-----+----+ +-----+----+ +-----+----+
//	|   YAML   | |   HCL    | |   JSON   |
//	| Override | | Override | | Override |
//	+----------+ +----------+ +----------+
//
// 🎯 Purpose:
// - Provides the built in configuration
// - Loads partial overrides from files
// - Layers overrides right-biased over a base
//
// 📝 Overrides:
// Every field of an Override is optional. A nil pointer leaves the base value
// alone, so an override file only names what it changes:
//
//	# .feedgrab.yaml
//	content:
//	  video: false
//	path_template: ./wbg/$author/$id/
//	timeout: 30s
//	ignore:
//	  - "**/*.gif"
//
// The same override in HCL:
//
//	content {
//	  video = false
//	}
//	path_template = "./wbg/$author/$id/"
//	timeout       = "30s"
//
// 🔍 Example:
//
//	o, err := config.Load(ctx, ".feedgrab.yaml")
//	if err != nil {
//		return err
//	}
//	cfg := config.Merge(config.Default(), o, flagOverride)
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config
