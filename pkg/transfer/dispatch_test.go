package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/quickxfer/pkg/category"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		action  int
		subtype int
		want    Route
	}{
		{name: "take_weapons", action: 1, want: Route{Take, cats(category.Weapon, category.Ammo)}},
		{name: "give_weapons", action: 12, want: Route{Give, cats(category.Weapon, category.Ammo)}},
		{name: "weapons_ignore_subtype", action: 1, subtype: 7, want: Route{Take, cats(category.Weapon, category.Ammo)}},
		{name: "armor", action: 2, want: Route{Take, cats(category.Armor)}},
		{name: "jewelry", action: 13, subtype: 1, want: Route{Give, cats(category.Jewelry)}},
		{name: "potions", action: 3, want: Route{Take, cats(category.Potion)}},
		{name: "poisons", action: 14, subtype: 1, want: Route{Give, cats(category.Poison)}},
		{name: "scrolls", action: 4, subtype: 3, want: Route{Take, cats(category.Scroll)}},
		{name: "all_food", action: 5, want: Route{Take, cats(category.Food)}},
		{name: "raw_food", action: 5, subtype: 1, want: Route{Take, cats(category.RawFood)}},
		{name: "cooked_food", action: 16, subtype: 2, want: Route{Give, cats(category.CookedFood)}},
		{name: "drinks", action: 5, subtype: 3, want: Route{Take, cats(category.Drinks)}},
		{name: "sweets", action: 16, subtype: 4, want: Route{Give, cats(category.Sweets)}},
		{name: "ingredients", action: 17, want: Route{Give, cats(category.Ingredient)}},
		{name: "books", action: 7, want: Route{Take, cats(category.Book)}},
		{name: "spell_tomes", action: 18, subtype: 1, want: Route{Give, cats(category.BookSpell)}},
		{name: "keys", action: 19, want: Route{Give, cats(category.Key)}},
		{name: "misc", action: 9, want: Route{Take, cats(category.Misc)}},
		{name: "soul_gems", action: 9, subtype: 1, want: Route{Take, cats(category.SoulGem)}},
		{name: "ores", action: 20, subtype: 2, want: Route{Give, cats(category.Ores)}},
		{name: "gems", action: 9, subtype: 3, want: Route{Take, cats(category.Gems)}},
		{name: "pelts", action: 9, subtype: 4, want: Route{Take, cats(category.LeatherPelts)}},
		{name: "building", action: 20, subtype: 5, want: Route{Give, cats(category.BuildingMaterials)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.action, tt.subtype))
		})
	}
}

func TestLookupUnmapped(t *testing.T) {
	tests := []struct {
		action  int
		subtype int
	}{
		{action: 0},
		{action: -1},
		{action: 10},
		{action: 11},
		{action: 21},
		{action: 1000},
		{action: 2, subtype: 2},
		{action: 3, subtype: 2},
		{action: 5, subtype: 5},
		{action: 7, subtype: -1},
		{action: 9, subtype: 6},
		{action: 20, subtype: 99},
	}

	for _, tt := range tests {
		assert.True(t, Lookup(tt.action, tt.subtype).Empty(), "action %d subtype %d should not route", tt.action, tt.subtype)
	}
}

func TestLookupIsTotal(t *testing.T) {
	seen := map[category.Category]bool{}
	for action := -5; action <= 30; action++ {
		for subtype := -3; subtype <= 10; subtype++ {
			route := Lookup(action, subtype)
			for _, c := range route.Categories {
				assert.True(t, category.IsValid(c), "action %d subtype %d routes to invalid %d", action, subtype, c)
				seen[c] = true
			}
			if (action < 1 || action > 9) && (action < 12 || action > 20) {
				assert.True(t, route.Empty())
			}
		}
	}
	for _, c := range category.All() {
		assert.True(t, seen[c], "no action reaches %s", c)
	}
}

func TestLookupDoesNotShareTable(t *testing.T) {
	r := Lookup(1, 0)
	r.Categories[0] = category.Key
	assert.Equal(t, cats(category.Weapon, category.Ammo), Lookup(1, 0).Categories)
}
