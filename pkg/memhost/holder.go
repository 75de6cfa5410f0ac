package memhost

import (
	"sync"

	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
	"gitlab.com/tozd/go/errors"
)

// Stack is one inventory line of a Holder.
type Stack struct {
	Item      *Item
	Count     int
	Worn      bool
	Favorited bool
	QuestItem bool
}

func (st *Stack) special() bool { return st.Worn || st.Favorited || st.QuestItem }

// Outfit maps items to the number of units a default outfit equips.
type Outfit map[form.ID]int

func (o Outfit) Count(id form.ID) int { return o[id] }

// 🧍 Holder is a player, NPC or container
type Holder struct {
	name      string
	player    bool
	maxWeight float64 // zero means no carry limit
	outfit    Outfit

	mu     sync.Mutex
	stacks []*Stack
}

var _ host.Holder = (*Holder)(nil)

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// AsPlayer marks the holder as the player character.
func AsPlayer() HolderOption {
	return func(h *Holder) { h.player = true }
}

// WithCarryLimit gives the holder a maximum carry weight.
func WithCarryLimit(max float64) HolderOption {
	return func(h *Holder) { h.maxWeight = max }
}

// WithOutfit gives the holder a default outfit.
func WithOutfit(o Outfit) HolderOption {
	return func(h *Holder) { h.outfit = o }
}

// NewHolder creates an empty holder.
func NewHolder(name string, opts ...HolderOption) *Holder {
	h := &Holder{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *Holder) Name() string   { return h.name }
func (h *Holder) IsPlayer() bool { return h.player }

func (h *Holder) DefaultOutfit() host.Outfit {
	if h.player || len(h.outfit) == 0 {
		return nil
	}
	return h.outfit
}

func (h *Holder) CarryCapacity() (max, current float64, ok bool) {
	if h.maxWeight <= 0 {
		return 0, 0, false
	}
	return h.maxWeight, h.CarriedWeight(), true
}

// CarriedWeight sums unit weight times count over all stacks.
func (h *Holder) CarriedWeight() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0.0
	for _, st := range h.stacks {
		total += st.Item.UnitWeight * float64(st.Count)
	}
	return total
}

// Inventory returns one entry per item, in the order each item first
// appears. Counts are summed over the item's stacks and a flag is set when
// any of its stacks carries it.
func (h *Holder) Inventory() []host.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]host.Entry, 0, len(h.stacks))
	index := make(map[form.ID]int, len(h.stacks))
	for _, st := range h.stacks {
		i, seen := index[st.Item.ID]
		if !seen {
			i = len(out)
			index[st.Item.ID] = i
			out = append(out, host.Entry{Item: st.Item})
		}
		e := &out[i]
		e.Count += st.Count
		e.Worn = e.Worn || st.Worn
		e.Favorited = e.Favorited || st.Favorited
		e.QuestItem = e.QuestItem || st.QuestItem
	}
	return out
}

// Add puts count units of item into the holder, merging with an existing stack.
func (h *Holder) Add(item *Item, count int) *Stack {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, st := range h.stacks {
		if st.Item.ID == item.ID {
			st.Count += count
			return st
		}
	}
	st := &Stack{Item: item, Count: count}
	h.stacks = append(h.stacks, st)
	return st
}

// Put appends a fully described stack, used by fixtures.
func (h *Holder) Put(st Stack) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stacks = append(h.stacks, &st)
}

// CountOf returns how many units of id the holder has.
func (h *Holder) CountOf(id form.ID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, st := range h.stacks {
		if st.Item.ID == id {
			n += st.Count
		}
	}
	return n
}

func (h *Holder) take(id form.ID, count int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	have := 0
	for _, st := range h.stacks {
		if st.Item.ID == id {
			have += st.Count
		}
	}
	if have < count {
		return errors.Errorf("have %d of %s, want %d", have, id, count)
	}

	// plain stacks go first so worn, favorited and quest units stay put
	// whenever the holder has enough of the item without them
	for _, plain := range []bool{true, false} {
		for _, st := range h.stacks {
			if count == 0 {
				break
			}
			if st.Item.ID != id || st.special() == plain {
				continue
			}
			n := min(st.Count, count)
			st.Count -= n
			count -= n
		}
	}

	kept := h.stacks[:0]
	for _, st := range h.stacks {
		if st.Count > 0 {
			kept = append(kept, st)
		}
	}
	h.stacks = kept
	return nil
}

// Stacks returns a copy of the raw stacks in insertion order.
func (h *Holder) Stacks() []Stack {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Stack, 0, len(h.stacks))
	for _, st := range h.stacks {
		out = append(out, *st)
	}
	return out
}
