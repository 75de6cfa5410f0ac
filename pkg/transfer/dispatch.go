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

package transfer

import (
	"slices"

	"github.com/walteh/quickxfer/pkg/category"
)

// 🧭 Direction says which way a route moves items
type Direction int

const (
	// Take moves items from the open container to the player
	Take Direction = iota
	// Give moves items from the player to the open container
	Give
)

func (d Direction) String() string {
	if d == Give {
		return "give"
	}
	return "take"
}

const (
	firstTakeAction = 1
	lastTakeAction  = 9
	firstGiveAction = 12
	lastGiveAction  = 20
)

// 🗺️ Route is what an (action, subtype) pair resolves to. An empty route
// moves nothing.
type Route struct {
	Direction  Direction
	Categories []category.Category
}

// Empty reports whether the route moves nothing.
func (r Route) Empty() bool {
	return len(r.Categories) == 0
}

// Group is one row of the action table. Groups with refinements are keyed by
// subtype; groups without them answer every subtype with Any.
type Group struct {
	Name     string
	Any      []category.Category
	Subtypes map[int][]category.Category
}

func cats(c ...category.Category) []category.Category { return c }

// Table maps a take action (1-9) to its group. Give actions reuse the same
// groups at action-11.
var Table = map[int]Group{
	1: {Name: "weapons", Any: cats(category.Weapon, category.Ammo)},
	2: {Name: "armor", Subtypes: map[int][]category.Category{
		0: cats(category.Armor),
		1: cats(category.Jewelry),
	}},
	3: {Name: "potions", Subtypes: map[int][]category.Category{
		0: cats(category.Potion),
		1: cats(category.Poison),
	}},
	4: {Name: "scrolls", Any: cats(category.Scroll)},
	5: {Name: "food", Subtypes: map[int][]category.Category{
		0: cats(category.Food),
		1: cats(category.RawFood),
		2: cats(category.CookedFood),
		3: cats(category.Drinks),
		4: cats(category.Sweets),
	}},
	6: {Name: "ingredients", Any: cats(category.Ingredient)},
	7: {Name: "books", Subtypes: map[int][]category.Category{
		0: cats(category.Book),
		1: cats(category.BookSpell),
	}},
	8: {Name: "keys", Any: cats(category.Key)},
	9: {Name: "misc", Subtypes: map[int][]category.Category{
		0: cats(category.Misc),
		1: cats(category.SoulGem),
		2: cats(category.Ores),
		3: cats(category.Gems),
		4: cats(category.LeatherPelts),
		5: cats(category.BuildingMaterials),
	}},
}

// 🔍 Lookup resolves an action and subtype to a route. Unknown pairs give an
// empty route.
func Lookup(action, subtype int) Route {
	var dir Direction
	var key int
	switch {
	case action >= firstTakeAction && action <= lastTakeAction:
		dir, key = Take, action
	case action >= firstGiveAction && action <= lastGiveAction:
		dir, key = Give, action-(firstGiveAction-firstTakeAction)
	default:
		return Route{}
	}

	g, ok := Table[key]
	if !ok {
		return Route{Direction: dir}
	}
	if g.Any != nil {
		return Route{Direction: dir, Categories: slices.Clone(g.Any)}
	}
	return Route{Direction: dir, Categories: slices.Clone(g.Subtypes[subtype])}
}
