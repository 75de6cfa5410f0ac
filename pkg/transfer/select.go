package transfer

import (
	"math"

	"github.com/walteh/quickxfer/pkg/filter"
	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
)

// epsilon absorbs float noise when comparing weights against capacity
const epsilon = 1e-9

// 📦 Candidate is one stack chosen for a move
type Candidate struct {
	Item       host.Item
	Count      int
	UnitWeight float64
	Clipped    bool // fewer units than available because of capacity
}

// 🎛️ Policy holds everything Select needs besides the inventory and the predicate
type Policy struct {
	Bounded  bool    // destination has a carry limit
	Capacity float64 // remaining weight the destination accepts, never negative

	// ProtectSpecial skips worn, favorited and quest stacks. Set when the
	// source is the player.
	ProtectSpecial bool

	// Outfit withholds default-outfit units from non-player sources
	Outfit host.Outfit

	MinWeight float64
	Excluded  map[form.ID]struct{}
}

// 🧮 ReservedQuantity returns how many units of the stack are held back
// because they belong to the holder's default outfit. The result is always
// within [0, entry.Count].
func ReservedQuantity(entry host.Entry, outfit host.Outfit) int {
	if outfit == nil || entry.Item == nil || entry.Count <= 0 {
		return 0
	}
	n := outfit.Count(entry.Item.FormID())
	if n <= 0 {
		return 0
	}
	return min(n, entry.Count)
}

// 🎯 Select walks the inventory once, in order, and returns the stacks to
// move. Filters run in a fixed order: leveled lists, non-playable items,
// minimum weight, hard exclusions, the category predicate, protected stacks,
// then outfit reservation. Capacity is accumulated greedily afterwards and
// selection stops at the first stack that does not fit whole.
//
// Weightless items cost no capacity, so they are taken even when the
// destination is already full, up to the stack that stops selection.
func Select(entries []host.Entry, pred filter.Predicate, policy Policy) []Candidate {
	if pred == nil {
		return nil
	}

	remaining := policy.Capacity
	var out []Candidate
	for _, e := range entries {
		it := e.Item
		if it == nil || e.Count <= 0 {
			continue
		}
		if it.FormType() == host.FormLeveledItem || !it.Playable() {
			continue
		}
		w := it.Weight()
		if policy.MinWeight > 0 && w < policy.MinWeight {
			continue
		}
		if _, ok := policy.Excluded[it.FormID()]; ok {
			continue
		}
		if !pred(it) {
			continue
		}
		if policy.ProtectSpecial && (e.Worn || e.Favorited || e.QuestItem) {
			continue
		}
		qty := e.Count - ReservedQuantity(e, policy.Outfit)
		if qty <= 0 {
			continue
		}

		if !policy.Bounded || w <= 0 {
			out = append(out, Candidate{Item: it, Count: qty, UnitWeight: w})
			continue
		}

		if cost := float64(qty) * w; cost <= remaining+epsilon {
			remaining -= cost
			out = append(out, Candidate{Item: it, Count: qty, UnitWeight: w})
			continue
		}

		fit := int(math.Floor(remaining/w + epsilon))
		if fit > 0 {
			out = append(out, Candidate{Item: it, Count: fit, UnitWeight: w, Clipped: true})
		}
		break
	}
	return out
}

// TotalWeight sums the weight of the candidates.
func TotalWeight(cands []Candidate) float64 {
	total := 0.0
	for _, c := range cands {
		total += c.UnitWeight * float64(c.Count)
	}
	return total
}
