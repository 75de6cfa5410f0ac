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

// Package host describes the parts of the game engine the transfer core talks
// to. Nothing in here is implemented by this module except for tests and the
// in-memory host in pkg/memhost.
package host

import (
	"context"

	"github.com/walteh/quickxfer/pkg/form"
)

// 🏷️ FormType is the engine-level type tag of an item definition
type FormType int

const (
	FormOther FormType = iota
	FormWeapon
	FormAmmo
	FormArmor
	FormAlchemy
	FormScroll
	FormIngredient
	FormBook
	FormKey
	FormMisc
	FormLight
	FormSoulGem
	FormLeveledItem
	FormKeyword
)

var formTypeNames = map[FormType]string{
	FormOther:       "other",
	FormWeapon:      "weapon",
	FormAmmo:        "ammo",
	FormArmor:       "armor",
	FormAlchemy:     "alchemy",
	FormScroll:      "scroll",
	FormIngredient:  "ingredient",
	FormBook:        "book",
	FormKey:         "key",
	FormMisc:        "misc",
	FormLight:       "light",
	FormSoulGem:     "soul_gem",
	FormLeveledItem: "leveled_item",
	FormKeyword:     "keyword",
}

func (t FormType) String() string {
	if s, ok := formTypeNames[t]; ok {
		return s
	}
	return "other"
}

// ParseFormType is the inverse of FormType.String.
func ParseFormType(s string) (FormType, bool) {
	for t, name := range formTypeNames {
		if name == s {
			return t, true
		}
	}
	return FormOther, false
}

// 🗡️ Item is an item definition (not an instance)
type Item interface {
	FormID() form.ID
	FormType() FormType
	Name() string
	Playable() bool
	Weight() float64
	// HasKeyword reports whether the definition carries the keyword form kw
	HasKeyword(kw form.ID) bool
	// IsFood and IsPoison are only meaningful for FormAlchemy items
	IsFood() bool
	IsPoison() bool
}

// 📦 Entry is one stack of a holder's inventory view
type Entry struct {
	Item      Item
	Count     int
	Worn      bool
	Favorited bool
	QuestItem bool
}

// Outfit is the default equipment assignment of a non-player actor.
type Outfit interface {
	// Count returns how many units of id the outfit equips
	Count(id form.ID) int
}

// 🧍 Holder is anything that owns an inventory
type Holder interface {
	Name() string
	// IsPlayer reports whether this holder is the player character
	IsPlayer() bool
	// Inventory returns a point-in-time view with one entry per item. Flags
	// are set when any unit of the item carries them.
	Inventory() []Entry
	// CarryCapacity returns the carry limit and the currently carried weight.
	// ok is false for holders without a carry limit (plain containers).
	CarryCapacity() (max, current float64, ok bool)
	// DefaultOutfit returns nil for the player and for holders without one
	DefaultOutfit() Outfit
}

// RemoveReason mirrors the engine's item-removal reasons.
type RemoveReason int

const (
	RemoveReasonNormal RemoveReason = iota
	RemoveReasonSteal
	RemoveReasonSell
)

func (r RemoveReason) String() string {
	switch r {
	case RemoveReasonNormal:
		return "normal"
	case RemoveReasonSteal:
		return "steal"
	case RemoveReasonSell:
		return "sell"
	default:
		return "unknown"
	}
}

// 🔌 Host is the engine surface the transfer engine needs
type Host interface {
	// Player returns the player character
	Player() Holder
	// MenuContainer returns the holder whose container menu is open, or nil
	MenuContainer() Holder
	// RemoveItem moves count units of item from source to destination in one engine call
	RemoveItem(ctx context.Context, source Holder, item Item, count int, reason RemoveReason, destination Holder) error
}

// 📬 EffectSink takes notifications that must run on the engine's UI task
// rather than on the calling context
type EffectSink interface {
	// QueueRefresh schedules an inventory-changed notification for each holder
	QueueRefresh(holders ...Holder)
}
