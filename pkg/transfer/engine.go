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

// Package transfer selects the stacks of one category from a holder and
// moves them to another, honoring capacity, exclusions and outfits.
package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/walteh/quickxfer/pkg/catalog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/filter"
	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
)

// ⚙️ Options configures an Engine
type Options struct {
	Catalog    *catalog.Catalog
	Host       host.Host
	Effects    host.EffectSink
	MinWeight  float64   // items lighter than this are never moved, zero disables
	Exclusions []form.ID // items that are never moved
}

// 🚚 Engine runs transfer requests against a host
type Engine struct {
	catalog   *catalog.Catalog
	host      host.Host
	effects   host.EffectSink
	minWeight float64
	excluded  map[form.ID]struct{}
}

// 📝 Line is one removal the engine asked the host for
type Line struct {
	Item    form.ID
	Name    string
	Count   int
	Weight  float64 // total weight of the line
	Clipped bool
	Err     error
}

// 📊 Result describes one TransferItemsOfType call
type Result struct {
	RequestID   string
	Category    category.Category
	Source      string
	Destination string
	Moved       []Line
	Failed      []Line
	Refresh     []host.Holder // holders whose inventory views need a refresh
}

// Count is the total number of units moved.
func (r Result) Count() int {
	n := 0
	for _, l := range r.Moved {
		n += l.Count
	}
	return n
}

// 🏭 New creates an engine
func New(opts Options) *Engine {
	excluded := make(map[form.ID]struct{}, len(opts.Exclusions))
	for _, id := range opts.Exclusions {
		excluded[id] = struct{}{}
	}
	return &Engine{
		catalog:   opts.Catalog,
		host:      opts.Host,
		effects:   opts.Effects,
		minWeight: opts.MinWeight,
		excluded:  excluded,
	}
}

// 🎛️ PolicyFor builds the selection policy for a move from source to destination
func (e *Engine) PolicyFor(source, destination host.Holder) Policy {
	p := Policy{
		MinWeight: e.minWeight,
		Excluded:  e.excluded,
	}
	if !destination.IsPlayer() {
		if limit, carried, ok := destination.CarryCapacity(); ok {
			p.Bounded = true
			p.Capacity = max(0, limit-carried)
		}
	}
	if source.IsPlayer() {
		p.ProtectSpecial = true
	} else {
		p.Outfit = source.DefaultOutfit()
	}
	return p
}

// 🎯 TransferItemsOfType moves every eligible stack of category c from
// source to destination. Nil holders and invalid categories are no-ops.
func (e *Engine) TransferItemsOfType(ctx context.Context, source, destination host.Holder, c category.Category) Result {
	res := Result{RequestID: uuid.NewString(), Category: c}
	logger := zerolog.Ctx(ctx).With().
		Str("module", "transfer").
		Str("request_id", res.RequestID).
		Str("category", c.String()).
		Logger()

	if source == nil || destination == nil {
		logger.Debug().Msg("missing holder, nothing to transfer")
		return res
	}
	res.Source, res.Destination = source.Name(), destination.Name()

	if !category.IsValid(c) {
		logger.Error().Int("category_value", int(c)).Msg("invalid category, nothing to transfer")
		return res
	}

	policy := e.PolicyFor(source, destination)
	pred := filter.Resolve(ctx, e.catalog, c)
	cands := Select(source.Inventory(), pred, policy)

	logger.Debug().
		Str("source", res.Source).
		Str("destination", res.Destination).
		Bool("bounded", policy.Bounded).
		Float64("capacity", policy.Capacity).
		Int("candidates", len(cands)).
		Msg("selection done")

	for _, cand := range cands {
		line := Line{
			Item:    cand.Item.FormID(),
			Name:    cand.Item.Name(),
			Count:   cand.Count,
			Weight:  cand.UnitWeight * float64(cand.Count),
			Clipped: cand.Clipped,
		}
		if err := e.host.RemoveItem(ctx, source, cand.Item, cand.Count, host.RemoveReasonNormal, destination); err != nil {
			logger.Error().Err(err).Stringer("item", line.Item).Int("count", line.Count).Msg("host removal failed")
			line.Err = err
			res.Failed = append(res.Failed, line)
			continue
		}
		res.Moved = append(res.Moved, line)
	}

	res.Refresh = []host.Holder{destination, source}
	if e.effects != nil {
		e.effects.QueueRefresh(res.Refresh...)
	}

	logger.Info().
		Str("source", res.Source).
		Str("destination", res.Destination).
		Int("lines", len(res.Moved)).
		Int("units", res.Count()).
		Int("failed", len(res.Failed)).
		Msg("transfer complete")
	return res
}

// 🎮 StartTransfer is the scripting entry point: it resolves the action and
// subtype to a route, then moves each category of the route between the
// player and the open container. Unknown codes do nothing.
func (e *Engine) StartTransfer(ctx context.Context, action, subtype int) []Result {
	logger := zerolog.Ctx(ctx).With().Str("module", "transfer").Logger()

	route := Lookup(action, subtype)
	if route.Empty() {
		logger.Debug().Int("action", action).Int("subtype", subtype).Msg("no route for action")
		return nil
	}

	player, container := e.host.Player(), e.host.MenuContainer()
	source, destination := container, player
	if route.Direction == Give {
		source, destination = player, container
	}

	logger.Debug().
		Int("action", action).
		Int("subtype", subtype).
		Stringer("direction", route.Direction).
		Int("categories", len(route.Categories)).
		Msg("starting transfer")

	results := make([]Result, 0, len(route.Categories))
	for _, c := range route.Categories {
		results = append(results, e.TransferItemsOfType(ctx, source, destination, c))
	}
	return results
}
