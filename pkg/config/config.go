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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/quickxfer/pkg/catalog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/form"
)

const (
	// DefaultDataDir is where the game loads plugin data from
	DefaultDataDir = "Data/SKSE/Plugins/QuickItemTransfer"
	// DataDirEnv overrides the data directory for every run
	DataDirEnv = "QUICKXFER_DATA_DIR"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

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

// 📚 Config represents the complete plugin configuration
type Config struct {
	DataDir    string            `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`       // Category data directory
	Extension  string            `json:"extension,omitempty" yaml:"extension,omitempty"`     // Data file extension inside category folders
	MaxWorkers int               `json:"max_workers,omitempty" yaml:"max_workers,omitempty"` // Parallel file parsers
	MinWeight  float64           `json:"min_weight,omitempty" yaml:"min_weight,omitempty"`   // Lighter items are never moved
	Exclude    []string          `json:"exclude,omitempty" yaml:"exclude,omitempty"`         // Form references that are never moved
	Keywords   map[string]string `json:"keywords,omitempty" yaml:"keywords,omitempty"`       // Keyword category name -> form reference
}

// 🏭 Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		Extension:  catalog.DefaultExtension,
		MaxWorkers: catalog.DefaultMaxWorkers,
	}
}

// 🎯 Load loads the configuration from a file. An empty path yields the
// defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	if path == "" {
		logger.Debug().Msg("no configuration file, using defaults")
		return Default(), nil
	}
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.MinWeight < 0 {
		return errors.Errorf("min_weight must not be negative, got %g", cfg.MinWeight)
	}
	if cfg.MaxWorkers < 0 {
		return errors.Errorf("max_workers must not be negative, got %d", cfg.MaxWorkers)
	}

	for i, ref := range cfg.Exclude {
		ref = strings.TrimSpace(ref)
		if _, err := form.ParseRef(ref); err != nil {
			return errors.Errorf("exclude[%d]: %w", i, err)
		}
		cfg.Exclude[i] = ref
	}

	for name, ref := range cfg.Keywords {
		c, ok := category.Parse(name)
		if !ok || c.Kind() != category.KindKeyword {
			return errors.Errorf("keywords: %q is not a keyword category", name)
		}
		if _, err := form.ParseRef(ref); err != nil {
			return errors.Errorf("keywords.%s: %w", name, err)
		}
	}

	// Set defaults
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)
	if cfg.Extension == "" {
		cfg.Extension = catalog.DefaultExtension
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = catalog.DefaultMaxWorkers
	}

	return nil
}

// 📂 ResolveDataDir returns the data directory to load from. The
// environment override wins over the configured value.
func (cfg *Config) ResolveDataDir() string {
	if dir := strings.TrimSpace(os.Getenv(DataDirEnv)); dir != "" {
		return filepath.Clean(dir)
	}
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	return DefaultDataDir
}

// CatalogOptions returns the catalog options for this configuration.
func (cfg *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		Dir:        cfg.ResolveDataDir(),
		Extension:  cfg.Extension,
		MaxWorkers: cfg.MaxWorkers,
	}
}

// 🏷️ IntrinsicTags returns the keyword references per category, configured
// values taking precedence over the built-in ones
func (cfg *Config) IntrinsicTags() map[category.Category]string {
	out := make(map[category.Category]string, len(catalog.DefaultIntrinsicTags))
	for c, ref := range catalog.DefaultIntrinsicTags {
		out[c] = ref
	}
	for name, ref := range cfg.Keywords {
		if c, ok := category.Parse(name); ok {
			out[c] = strings.TrimSpace(ref)
		}
	}
	return out
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (*%s, %d workers, min weight %g, %d exclusions)",
		cfg.ResolveDataDir(), cfg.Extension, cfg.MaxWorkers, cfg.MinWeight, len(cfg.Exclude))
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
