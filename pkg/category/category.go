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

// Package category defines the closed set of item categories a bulk transfer
// can be requested for.
package category

import (
	"strings"
)

// 📦 Category identifies a semantic class of item
type Category int

const (
	Weapon Category = iota
	Ammo
	Armor
	Jewelry
	Poison
	Potion
	Scroll
	Food
	RawFood
	CookedFood
	Sweets
	Drinks
	Ingredient
	Book
	BookSpell
	Key
	Misc
	SoulGem
	Ores
	Gems
	LeatherPelts
	BuildingMaterials
	None
)

// 🧭 Kind tells where a category's predicate gets its answer from
type Kind int

const (
	KindInvalid  Kind = iota
	KindFormType      // the item's form type
	KindDerived       // properties of the item itself (alchemy flags)
	KindListed        // identifier sets loaded from data files
	KindKeyword       // a keyword on the item, memoized per form
)

func (k Kind) String() string {
	switch k {
	case KindFormType:
		return "form_type"
	case KindDerived:
		return "derived"
	case KindListed:
		return "listed"
	case KindKeyword:
		return "keyword"
	default:
		return "invalid"
	}
}

// Info is the static description of one category.
type Info struct {
	Name   string
	Kind   Kind
	File   string // data file directly under the data dir, listed categories only
	Folder string // data folder under the data dir, listed categories only
}

var infos = [...]Info{
	Weapon:            {Name: "Weapon", Kind: KindFormType},
	Ammo:              {Name: "Ammo", Kind: KindFormType},
	Armor:             {Name: "Armor", Kind: KindFormType},
	Jewelry:           {Name: "Jewelry", Kind: KindKeyword},
	Poison:            {Name: "Poison", Kind: KindDerived},
	Potion:            {Name: "Potion", Kind: KindDerived},
	Scroll:            {Name: "Scroll", Kind: KindFormType},
	Food:              {Name: "Food", Kind: KindDerived},
	RawFood:           {Name: "RawFood", Kind: KindListed, File: "raw_food.txt", Folder: "RawFood"},
	CookedFood:        {Name: "CookedFood", Kind: KindListed, File: "cooked_food.txt", Folder: "CookedFood"},
	Sweets:            {Name: "Sweets", Kind: KindListed, File: "sweets.txt", Folder: "Sweets"},
	Drinks:            {Name: "Drinks", Kind: KindListed, File: "drinks.txt", Folder: "Drinks"},
	Ingredient:        {Name: "Ingredient", Kind: KindFormType},
	Book:              {Name: "Book", Kind: KindFormType},
	BookSpell:         {Name: "BookSpell", Kind: KindKeyword},
	Key:               {Name: "Key", Kind: KindFormType},
	Misc:              {Name: "Misc", Kind: KindFormType},
	SoulGem:           {Name: "SoulGem", Kind: KindFormType},
	Ores:              {Name: "Ores", Kind: KindListed, File: "ores.txt", Folder: "Ores"},
	Gems:              {Name: "Gems", Kind: KindListed, File: "gems.txt", Folder: "Gems"},
	LeatherPelts:      {Name: "LeatherPelts", Kind: KindListed, File: "leather_and_pelts.txt", Folder: "LeatherPelts"},
	BuildingMaterials: {Name: "BuildingMaterials", Kind: KindListed, File: "building_materials.txt", Folder: "BuildingMaterials"},
	None:              {Name: "None", Kind: KindInvalid},
}

// ✅ IsValid reports whether c is a filterable category
func IsValid(c Category) bool {
	return c >= Weapon && c < None
}

// Describe returns the static description of c. Invalid categories get the
// description of None.
func Describe(c Category) Info {
	if !IsValid(c) {
		return infos[None]
	}
	return infos[c]
}

func (c Category) String() string {
	if !IsValid(c) {
		return infos[None].Name
	}
	return infos[c].Name
}

// Kind returns where c's predicate gets its answer from.
func (c Category) Kind() Kind {
	return Describe(c).Kind
}

// All returns every valid category in declaration order.
func All() []Category {
	out := make([]Category, 0, int(None))
	for c := Weapon; c < None; c++ {
		out = append(out, c)
	}
	return out
}

// OfKind returns the valid categories of the given kind in declaration order.
func OfKind(k Kind) []Category {
	var out []Category
	for _, c := range All() {
		if infos[c].Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// 🔍 Parse finds a category by name, case-insensitively
func Parse(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range All() {
		if strings.EqualFold(infos[c].Name, name) {
			return c, true
		}
	}
	return None, false
}
