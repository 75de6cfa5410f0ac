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

// Package filter maps every category to the predicate that decides
// whether an item belongs to it.
package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/quickxfer/pkg/catalog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/host"
)

// 🔍 Predicate reports whether an item belongs to a category
type Predicate func(item host.Item) bool

// builder turns a loaded catalog into a predicate
type builder func(cat *catalog.Catalog, c category.Category) Predicate

// table is built once and covers every valid category exactly once
var table = map[category.Category]builder{
	category.Weapon:     formType(host.FormWeapon),
	category.Ammo:       formType(host.FormAmmo),
	category.Armor:      formType(host.FormArmor),
	category.Scroll:     formType(host.FormScroll),
	category.Ingredient: formType(host.FormIngredient),
	category.Book:       formType(host.FormBook),
	category.Key:        formType(host.FormKey),
	category.SoulGem:    formType(host.FormSoulGem),
	category.Misc:       formType(host.FormMisc, host.FormLight),

	category.Potion: derived(func(it host.Item) bool { return isAlchemy(it) && !it.IsFood() && !it.IsPoison() }),
	category.Poison: derived(func(it host.Item) bool { return isAlchemy(it) && !it.IsFood() && it.IsPoison() }),
	category.Food:   derived(func(it host.Item) bool { return isAlchemy(it) && it.IsFood() }),

	category.RawFood:           listed,
	category.CookedFood:        listed,
	category.Sweets:            listed,
	category.Drinks:            listed,
	category.Ores:              listed,
	category.Gems:              listed,
	category.LeatherPelts:      listed,
	category.BuildingMaterials: listed,

	category.Jewelry:   tagged(host.FormArmor),
	category.BookSpell: tagged(host.FormBook),
}

// 🎯 Resolve returns the predicate for c. Unknown categories get a predicate
// that rejects everything, and the miss is logged at error level.
func Resolve(ctx context.Context, cat *catalog.Catalog, c category.Category) Predicate {
	build, ok := table[c]
	if !ok || !category.IsValid(c) {
		zerolog.Ctx(ctx).Error().
			Str("module", "filter").
			Int("category", int(c)).
			Msg("no predicate for category")
		return never
	}
	return build(cat, c)
}

// Covers reports whether c has an entry in the predicate table.
func Covers(c category.Category) bool {
	_, ok := table[c]
	return ok
}

func never(host.Item) bool { return false }

func isAlchemy(it host.Item) bool {
	return it.FormType() == host.FormAlchemy
}

func formType(types ...host.FormType) builder {
	return func(*catalog.Catalog, category.Category) Predicate {
		return func(it host.Item) bool {
			ft := it.FormType()
			for _, t := range types {
				if ft == t {
					return true
				}
			}
			return false
		}
	}
}

func derived(p Predicate) builder {
	return func(*catalog.Catalog, category.Category) Predicate {
		return p
	}
}

func listed(cat *catalog.Catalog, c category.Category) Predicate {
	if cat == nil {
		return never
	}
	return func(it host.Item) bool {
		return cat.IsInCategory(it.FormID(), c)
	}
}

// tagged requires the form type before probing the keyword, so the lazy
// cache only ever sees items of the right type
func tagged(ft host.FormType) builder {
	return func(cat *catalog.Catalog, c category.Category) Predicate {
		if cat == nil {
			return never
		}
		return func(it host.Item) bool {
			return it.FormType() == ft && cat.IsByIntrinsicTag(it, c)
		}
	}
}
