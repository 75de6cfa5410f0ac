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

// Package memhost is an in-memory stand-in for the game engine: a form
// database, holders with inventories and a UI task queue. The CLI simulator
// and the tests of the other packages run against it.
package memhost

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
	"gitlab.com/tozd/go/errors"
)

// 🗡️ Item is an item or keyword definition
type Item struct {
	ID          form.ID
	EditorID    string
	Plugin      string
	Type        host.FormType
	Label       string
	NotPlayable bool
	UnitWeight  float64
	Keywords    []form.ID
	Food        bool
	Poison      bool

	probes atomic.Int64
}

var _ host.Item = (*Item)(nil)

func (i *Item) FormID() form.ID         { return i.ID }
func (i *Item) FormType() host.FormType { return i.Type }
func (i *Item) Playable() bool          { return !i.NotPlayable }
func (i *Item) Weight() float64         { return i.UnitWeight }
func (i *Item) IsFood() bool            { return i.Food }
func (i *Item) IsPoison() bool          { return i.Poison }

func (i *Item) Name() string {
	if i.Label != "" {
		return i.Label
	}
	return i.EditorID
}

// HasKeyword counts every probe so tests can see cache hits.
func (i *Item) HasKeyword(kw form.ID) bool {
	i.probes.Add(1)
	for _, k := range i.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// KeywordProbes returns how many times HasKeyword was called.
func (i *Item) KeywordProbes() int64 {
	return i.probes.Load()
}

// Removal records one RemoveItem call.
type Removal struct {
	Source      string
	Destination string
	Item        form.ID
	Count       int
	Reason      host.RemoveReason
}

// 🔧 Host implements form.Resolver, host.Host and host.EffectSink
type Host struct {
	mu        sync.RWMutex
	loadOrder []string
	items     map[form.ID]*Item
	byEditor  map[string]form.ID
	holders   map[string]*Holder
	player    *Holder
	container *Holder

	removals  []Removal
	uiQueue   []func()
	refreshed []string
}

var (
	_ form.Resolver   = (*Host)(nil)
	_ host.Host       = (*Host)(nil)
	_ host.EffectSink = (*Host)(nil)
)

// 🏭 New creates a host whose plugins load in the given order
func New(loadOrder ...string) *Host {
	return &Host{
		loadOrder: loadOrder,
		items:     make(map[form.ID]*Item),
		byEditor:  make(map[string]form.ID),
		holders:   make(map[string]*Holder),
	}
}

// FullID combines a plugin's load order index with a local id.
func (h *Host) FullID(plugin string, local uint32) (form.ID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fullID(plugin, local)
}

func (h *Host) fullID(plugin string, local uint32) (form.ID, bool) {
	for idx, p := range h.loadOrder {
		if p == plugin {
			return form.ID(uint32(idx)<<24 | local&0x00FFFFFF), true
		}
	}
	return 0, false
}

// 📝 Register adds a definition. A zero ID is derived from Plugin and local.
func (h *Host) Register(item *Item, local uint32) error {
	if item == nil {
		return errors.New("nil item")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if item.ID == 0 {
		id, ok := h.fullID(item.Plugin, local)
		if !ok {
			return errors.Errorf("plugin %q of %s is not in the load order", item.Plugin, item.EditorID)
		}
		item.ID = id
	}
	if _, dup := h.items[item.ID]; dup {
		return errors.Errorf("form %s registered twice", item.ID)
	}
	if item.EditorID != "" {
		if _, dup := h.byEditor[item.EditorID]; dup {
			return errors.Errorf("editor id %q registered twice", item.EditorID)
		}
		h.byEditor[item.EditorID] = item.ID
	}
	h.items[item.ID] = item
	return nil
}

// MustRegister is Register for fixtures; it panics on error.
func (h *Host) MustRegister(item *Item, local uint32) *Item {
	if err := h.Register(item, local); err != nil {
		panic(err)
	}
	return item
}

// Item returns a registered definition.
func (h *Host) Item(id form.ID) (*Item, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	it, ok := h.items[id]
	return it, ok
}

// ItemByEditorID returns a registered definition by editor id.
func (h *Host) ItemByEditorID(editorID string) (*Item, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.byEditor[editorID]
	if !ok {
		return nil, false
	}
	return h.items[id], true
}

func (h *Host) LookupEditorID(editorID string) (form.ID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.byEditor[editorID]
	return id, ok
}

func (h *Host) LookupLocal(plugin string, local uint32) (form.ID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.fullID(plugin, local)
	if !ok {
		return 0, false
	}
	if _, loaded := h.items[id]; !loaded {
		return 0, false
	}
	return id, true
}

func (h *Host) Exists(id form.ID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.items[id]
	return ok
}

// 🧍 AddHolder registers a holder under its name
func (h *Host) AddHolder(holder *Holder) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.holders[holder.name]; dup {
		return errors.Errorf("holder %q added twice", holder.name)
	}
	h.holders[holder.name] = holder
	if holder.player {
		if h.player != nil {
			return errors.Errorf("holder %q: player already set to %q", holder.name, h.player.name)
		}
		h.player = holder
	}
	return nil
}

// Holder returns a holder by name.
func (h *Host) Holder(name string) (*Holder, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hl, ok := h.holders[name]
	return hl, ok
}

// OpenContainer makes holder the target of the open container menu.
func (h *Host) OpenContainer(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	hl, ok := h.holders[name]
	if !ok {
		return errors.Errorf("unknown holder %q", name)
	}
	h.container = hl
	return nil
}

// CloseContainer closes the container menu.
func (h *Host) CloseContainer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.container = nil
}

func (h *Host) Player() host.Holder {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.player == nil {
		return nil
	}
	return h.player
}

func (h *Host) MenuContainer() host.Holder {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.container == nil {
		return nil
	}
	return h.container
}

// 🚚 RemoveItem moves units between two holders of this host in one step
func (h *Host) RemoveItem(ctx context.Context, source host.Holder, item host.Item, count int, reason host.RemoveReason, destination host.Holder) error {
	src, ok := source.(*Holder)
	if !ok || src == nil {
		return errors.Errorf("source %T is not a memhost holder", source)
	}
	dst, ok := destination.(*Holder)
	if !ok || dst == nil {
		return errors.Errorf("destination %T is not a memhost holder", destination)
	}
	it, ok := item.(*Item)
	if !ok || it == nil {
		return errors.Errorf("item %T is not a memhost item", item)
	}
	if count <= 0 {
		return errors.Errorf("removing %d units of %s", count, it.ID)
	}

	if err := src.take(it.ID, count); err != nil {
		return errors.Errorf("removing from %s: %w", src.name, err)
	}
	dst.Add(it, count)

	h.mu.Lock()
	h.removals = append(h.removals, Removal{
		Source:      src.name,
		Destination: dst.name,
		Item:        it.ID,
		Count:       count,
		Reason:      reason,
	})
	h.mu.Unlock()
	return nil
}

// Removals returns every RemoveItem call so far.
func (h *Host) Removals() []Removal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Removal, len(h.removals))
	copy(out, h.removals)
	return out
}

// 📬 QueueRefresh queues an inventory update message per holder on the UI task
func (h *Host) QueueRefresh(holders ...host.Holder) {
	names := make([]string, 0, len(holders))
	for _, hl := range holders {
		if hl != nil {
			names = append(names, hl.Name())
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uiQueue = append(h.uiQueue, func() {
		h.refreshed = append(h.refreshed, names...)
	})
}

// PendingUITasks returns how many UI tasks are waiting.
func (h *Host) PendingUITasks() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.uiQueue)
}

// RunUITasks drains the UI queue the way the engine's UI thread would and
// returns how many tasks ran.
func (h *Host) RunUITasks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.uiQueue)
	for _, task := range h.uiQueue {
		task()
	}
	h.uiQueue = nil
	return n
}

// Refreshed returns the holder names that received an update message.
func (h *Host) Refreshed() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.refreshed))
	copy(out, h.refreshed)
	return out
}
