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

package opts

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/quickxfer/pkg/config"
	"github.com/walteh/quickxfer/pkg/memhost"
	"github.com/walteh/quickxfer/pkg/plugin"
)

// 🎛️ RootOpts holds the flags shared by every command
type RootOpts struct {
	ConfigFile string
	DataDir    string
	Debug      bool
}

// 📚 LoadConfig loads the config file, applying the data dir flag on top
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
		if err := cfg.Validate(); err != nil {
			return nil, errors.Errorf("validating config: %w", err)
		}
	}
	return cfg, nil
}

// 🧩 Session is a started plugin running against a world fixture
type Session struct {
	Host   *memhost.Host
	Plugin *plugin.Plugin
	Bridge *Bridge
}

// 🚀 Start loads the world, then drives the plugin through the data-loaded
// message exactly like the game would
func (o *RootOpts) Start(ctx context.Context, worldPath string) (*Session, error) {
	cfg, err := o.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	h, err := memhost.LoadWorld(ctx, worldPath)
	if err != nil {
		return nil, errors.Errorf("loading world: %w", err)
	}

	bridge := &Bridge{}
	p := plugin.New(plugin.Options{
		Config:   cfg,
		Resolver: h,
		Host:     h,
		Effects:  h,
		Bridge:   bridge,
	})
	if err := p.OnMessage(ctx, plugin.MessageDataLoaded); err != nil {
		return nil, errors.Errorf("starting plugin: %w", err)
	}

	return &Session{Host: h, Plugin: p, Bridge: bridge}, nil
}

// 🌉 Bridge records the functions the plugin registers
type Bridge struct {
	Functions map[string]func(action, subtype int)
}

func (b *Bridge) RegisterFunction(name, script string, fn func(action, subtype int)) error {
	if b.Functions == nil {
		b.Functions = make(map[string]func(action, subtype int))
	}
	key := script + "." + name
	if _, dup := b.Functions[key]; dup {
		return errors.Errorf("function %s already registered", key)
	}
	b.Functions[key] = fn
	return nil
}
