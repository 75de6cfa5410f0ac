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

// Package plugin wires the catalog and the transfer engine into the host
// lifecycle. Nothing is registered with the scripting bridge until the host
// reports that game data is loaded and every intrinsic tag resolved.
package plugin

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/quickxfer/pkg/catalog"
	"github.com/walteh/quickxfer/pkg/config"
	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
	"github.com/walteh/quickxfer/pkg/transfer"
)

const (
	// FunctionName is the scripting function exposed to the UI
	FunctionName = "StartTransfer"
	// ScriptName is the script the function is bound to
	ScriptName = "QuickItemTransfer_Script"
)

// 📨 Message is a lifecycle notification from the host
type Message int

const (
	MessagePostLoad Message = iota
	MessageInputLoaded
	MessageDataLoaded
	MessageNewGame
	MessagePreLoadGame
)

func (m Message) String() string {
	switch m {
	case MessagePostLoad:
		return "post_load"
	case MessageInputLoaded:
		return "input_loaded"
	case MessageDataLoaded:
		return "data_loaded"
	case MessageNewGame:
		return "new_game"
	case MessagePreLoadGame:
		return "pre_load_game"
	default:
		return "unknown"
	}
}

// 🌉 Bridge registers native functions with the host scripting engine
type Bridge interface {
	RegisterFunction(name, script string, fn func(action, subtype int)) error
}

// ⚙️ Options are the collaborators the plugin needs
type Options struct {
	Config   *config.Config // nil means defaults
	Resolver form.Resolver
	Host     host.Host
	Effects  host.EffectSink
	Bridge   Bridge
}

// 🧩 Plugin owns the catalog and engine for the life of the process
type Plugin struct {
	opts Options

	once    sync.Once
	err     error
	ready   bool
	catalog *catalog.Catalog
	engine  *transfer.Engine
	report  *catalog.LoadReport
}

// 🏭 New creates a plugin that waits for the data-loaded message
func New(opts Options) *Plugin {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Plugin{opts: opts}
}

// 📨 OnMessage handles a host lifecycle message. The first data-loaded
// message builds the catalog and registers the scripting function; later
// ones return the outcome of that first attempt.
func (p *Plugin) OnMessage(ctx context.Context, msg Message) error {
	logger := zerolog.Ctx(ctx).With().Str("module", "plugin").Logger()
	if msg != MessageDataLoaded {
		logger.Debug().Stringer("message", msg).Msg("ignoring message")
		return nil
	}

	p.once.Do(func() {
		p.err = p.start(logger.WithContext(ctx))
		if p.err != nil {
			logger.Error().Err(p.err).Msg("plugin disabled")
		}
	})
	return p.err
}

func (p *Plugin) start(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	cfg := p.opts.Config
	if p.opts.Resolver == nil || p.opts.Host == nil || p.opts.Bridge == nil {
		return errors.New("plugin needs a resolver, a host and a bridge")
	}

	cat := catalog.New(p.opts.Resolver, cfg.CatalogOptions())
	report := cat.LoadAll(ctx)

	if err := cat.LoadIntrinsicTags(ctx, cfg.IntrinsicTags()); err != nil {
		return errors.Errorf("loading intrinsic tags: %w", err)
	}

	excluded := make([]form.ID, 0, len(cfg.Exclude))
	for _, ref := range cfg.Exclude {
		id, ok, err := form.ParseAndResolve(p.opts.Resolver, ref)
		if err != nil || !ok {
			logger.Warn().Err(err).Str("ref", ref).Msg("exclusion did not resolve, ignoring it")
			continue
		}
		excluded = append(excluded, id)
	}

	engine := transfer.New(transfer.Options{
		Catalog:    cat,
		Host:       p.opts.Host,
		Effects:    p.opts.Effects,
		MinWeight:  cfg.MinWeight,
		Exclusions: excluded,
	})

	p.catalog, p.engine, p.report = cat, engine, report

	// calls arrive long after the lifecycle message returns
	callCtx := context.WithoutCancel(ctx)
	err := p.opts.Bridge.RegisterFunction(FunctionName, ScriptName, func(action, subtype int) {
		p.StartTransfer(callCtx, action, subtype)
	})
	if err != nil {
		return errors.Errorf("registering %s on %s: %w", FunctionName, ScriptName, err)
	}
	p.ready = true

	logger.Info().
		Str("dir", report.Dir).
		Int("files", len(report.Files)).
		Int("rejected", report.Rejected()).
		Int("exclusions", len(excluded)).
		Msg("plugin ready")
	return nil
}

// 🎮 StartTransfer runs a scripting request. Requests that arrive before
// the plugin is ready are dropped.
func (p *Plugin) StartTransfer(ctx context.Context, action, subtype int) []transfer.Result {
	if !p.ready {
		zerolog.Ctx(ctx).Warn().
			Str("module", "plugin").
			Int("action", action).
			Int("subtype", subtype).
			Msg("transfer requested before the plugin was ready")
		return nil
	}
	return p.engine.StartTransfer(ctx, action, subtype)
}

// Ready reports whether the scripting function has been registered.
func (p *Plugin) Ready() bool { return p.ready }

// Catalog returns the loaded catalog, nil before the data-loaded message.
func (p *Plugin) Catalog() *catalog.Catalog { return p.catalog }

// Engine returns the transfer engine, nil before the data-loaded message.
func (p *Plugin) Engine() *transfer.Engine { return p.engine }

// Report returns the catalog load report, nil before the data-loaded message.
func (p *Plugin) Report() *catalog.LoadReport { return p.report }
