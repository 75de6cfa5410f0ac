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

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context, the data dir default is available as a variable
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_data_dir": cty.StringVal(DefaultDataDir),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		DataDir    string            `hcl:"data_dir,optional"`
		Extension  string            `hcl:"extension,optional"`
		MaxWorkers int               `hcl:"max_workers,optional"`
		MinWeight  float64           `hcl:"min_weight,optional"`
		Exclude    []string          `hcl:"exclude,optional"`
		Keywords   map[string]string `hcl:"keywords,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		DataDir:    hclCfg.DataDir,
		Extension:  hclCfg.Extension,
		MaxWorkers: hclCfg.MaxWorkers,
		MinWeight:  hclCfg.MinWeight,
		Exclude:    hclCfg.Exclude,
		Keywords:   hclCfg.Keywords,
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
