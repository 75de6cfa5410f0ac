package memhost

import (
	"bytes"
	"context"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
)

// 🌍 World is the YAML description of a host used by the simulator
type World struct {
	LoadOrder []string      `yaml:"load_order"`
	Items     []WorldItem   `yaml:"items"`
	Holders   []WorldHolder `yaml:"holders"`
	Open      string        `yaml:"open,omitempty"`
}

// WorldItem describes one form. Keywords name other items by editor id.
type WorldItem struct {
	EditorID string   `yaml:"editor_id"`
	Name     string   `yaml:"name,omitempty"`
	Plugin   string   `yaml:"plugin"`
	Local    string   `yaml:"local"`
	Type     string   `yaml:"type"`
	Weight   float64  `yaml:"weight,omitempty"`
	Playable *bool    `yaml:"playable,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
	Food     bool     `yaml:"food,omitempty"`
	Poison   bool     `yaml:"poison,omitempty"`
}

// WorldHolder describes a holder and its inventory.
type WorldHolder struct {
	Name      string         `yaml:"name"`
	Player    bool           `yaml:"player,omitempty"`
	MaxWeight float64        `yaml:"max_weight,omitempty"`
	Outfit    map[string]int `yaml:"outfit,omitempty"`
	Inventory []WorldStack   `yaml:"inventory,omitempty"`
}

// WorldStack is one inventory line referring to an item by editor id.
type WorldStack struct {
	Item      string `yaml:"item"`
	Count     int    `yaml:"count"`
	Worn      bool   `yaml:"worn,omitempty"`
	Favorited bool   `yaml:"favorited,omitempty"`
	Quest     bool   `yaml:"quest,omitempty"`
}

// LoadWorld reads a world file and builds a host from it.
func LoadWorld(ctx context.Context, path string) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading world file: %w", err)
	}
	h, err := ParseWorld(ctx, data)
	if err != nil {
		return nil, errors.Errorf("loading world %s: %w", path, err)
	}
	return h, nil
}

// 🏗️ ParseWorld builds a host from YAML
func ParseWorld(ctx context.Context, data []byte) (*Host, error) {
	var w World
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&w); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return w.Build(ctx)
}

// Build creates the host described by w.
func (w *World) Build(ctx context.Context) (*Host, error) {
	logger := zerolog.Ctx(ctx)
	if len(w.LoadOrder) == 0 {
		return nil, errors.New("load_order is required")
	}
	h := New(w.LoadOrder...)

	// keywords are items too; register everything before wiring keyword ids
	pending := make([]*Item, 0, len(w.Items))
	for _, wi := range w.Items {
		typ, ok := host.ParseFormType(wi.Type)
		if !ok {
			return nil, errors.Errorf("item %s: unknown type %q", wi.EditorID, wi.Type)
		}
		local, err := strconv.ParseUint(wi.Local, 0, 32)
		if err != nil {
			return nil, errors.Errorf("item %s: invalid local id %q: %w", wi.EditorID, wi.Local, err)
		}
		it := &Item{
			EditorID:    wi.EditorID,
			Plugin:      wi.Plugin,
			Type:        typ,
			Label:       wi.Name,
			NotPlayable: wi.Playable != nil && !*wi.Playable,
			UnitWeight:  wi.Weight,
			Food:        wi.Food,
			Poison:      wi.Poison,
		}
		if err := h.Register(it, uint32(local)); err != nil {
			return nil, errors.Errorf("registering %s: %w", wi.EditorID, err)
		}
		pending = append(pending, it)
	}
	for i, wi := range w.Items {
		for _, kw := range wi.Keywords {
			id, ok := h.LookupEditorID(kw)
			if !ok {
				return nil, errors.Errorf("item %s: unknown keyword %q", wi.EditorID, kw)
			}
			pending[i].Keywords = append(pending[i].Keywords, id)
		}
	}

	for _, wh := range w.Holders {
		outfit := Outfit{}
		for editorID, n := range wh.Outfit {
			id, ok := h.LookupEditorID(editorID)
			if !ok {
				return nil, errors.Errorf("holder %s: unknown outfit item %q", wh.Name, editorID)
			}
			outfit[id] = n
		}

		opts := []HolderOption{WithCarryLimit(wh.MaxWeight), WithOutfit(outfit)}
		if wh.Player {
			opts = append(opts, AsPlayer())
		}
		holder := NewHolder(wh.Name, opts...)
		for _, ws := range wh.Inventory {
			it, ok := h.ItemByEditorID(ws.Item)
			if !ok {
				return nil, errors.Errorf("holder %s: unknown item %q", wh.Name, ws.Item)
			}
			holder.Put(Stack{
				Item:      it,
				Count:     ws.Count,
				Worn:      ws.Worn,
				Favorited: ws.Favorited,
				QuestItem: ws.Quest,
			})
		}
		if err := h.AddHolder(holder); err != nil {
			return nil, err
		}
	}

	if h.player == nil {
		return nil, errors.New("world has no player holder")
	}
	if w.Open != "" {
		if err := h.OpenContainer(w.Open); err != nil {
			return nil, errors.Errorf("opening container: %w", err)
		}
	}

	logger.Debug().
		Int("items", len(w.Items)).
		Int("holders", len(w.Holders)).
		Str("open", w.Open).
		Msg("world built")
	return h, nil
}

// IDOf resolves an editor id, panicking when it is unknown. Test helper.
func (h *Host) IDOf(editorID string) form.ID {
	id, ok := h.LookupEditorID(editorID)
	if !ok {
		panic("unknown editor id " + editorID)
	}
	return id
}
