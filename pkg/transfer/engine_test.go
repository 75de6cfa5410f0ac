package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/quickxfer/pkg/catalog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
	"github.com/walteh/quickxfer/pkg/memhost"
)

const testWorld = `
load_order: [Skyrim.esm]
items:
  - {editor_id: ArmorJewelry, plugin: Skyrim.esm, local: "0x08F95A", type: keyword}
  - {editor_id: VendorItemSpellTome, plugin: Skyrim.esm, local: "0x0937A5", type: keyword}
  - {editor_id: IronSword, name: Iron Sword, plugin: Skyrim.esm, local: "0x012EB7", type: weapon, weight: 10}
  - {editor_id: IronArrow, plugin: Skyrim.esm, local: "0x01397D", type: ammo}
  - {editor_id: Apple, name: Red Apple, plugin: Skyrim.esm, local: "0x064B2F", type: alchemy, weight: 0.5, food: true}
  - {editor_id: OreGold, name: Gold Ore, plugin: Skyrim.esm, local: "0x05ACDF", type: misc, weight: 1}
  - {editor_id: GoldRing, plugin: Skyrim.esm, local: "0x09C6F7", type: armor, weight: 0.25, keywords: [ArmorJewelry]}
  - {editor_id: IronHelmet, plugin: Skyrim.esm, local: "0x012E4D", type: armor, weight: 5}
holders:
  - name: Player
    player: true
    max_weight: 300
    inventory:
      - {item: IronSword, count: 1}
      - {item: Apple, count: 20}
      - {item: OreGold, count: 5}
      - {item: GoldRing, count: 1, worn: true}
  - name: Lydia
    max_weight: 3
  - name: Guard
    max_weight: 100
    outfit: {IronHelmet: 1}
    inventory:
      - {item: IronHelmet, count: 2}
      - {item: GoldRing, count: 1, worn: true}
  - name: Chest
    inventory:
      - {item: IronSword, count: 2}
      - {item: IronArrow, count: 24}
open: Chest
`

type mockEffects struct {
	mock.Mock
}

func (m *mockEffects) QueueRefresh(holders ...host.Holder) {
	m.Called(holders)
}

type testEnv struct {
	ctx     context.Context
	host    *memhost.Host
	catalog *catalog.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	h, err := memhost.ParseWorld(ctx, []byte(testWorld))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_food.txt"), []byte("# fresh\nApple\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ores.txt"), []byte("OreGold\n"), 0o644))

	cat := catalog.New(h, catalog.Options{Dir: dir})
	cat.LoadAll(ctx)
	require.NoError(t, cat.LoadIntrinsicTags(ctx, catalog.DefaultIntrinsicTags))

	return &testEnv{ctx: ctx, host: h, catalog: cat}
}

func (env *testEnv) holder(t *testing.T, name string) *memhost.Holder {
	t.Helper()
	hl, ok := env.host.Holder(name)
	require.True(t, ok, "holder %s", name)
	return hl
}

func TestTransferRawFoodToUnboundedDestination(t *testing.T) {
	env := newTestEnv(t)
	player, chest := env.holder(t, "Player"), env.holder(t, "Chest")

	effects := &mockEffects{}
	effects.On("QueueRefresh", []host.Holder{chest, player}).Once()

	engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: effects})
	res := engine.TransferItemsOfType(env.ctx, player, chest, category.RawFood)

	apple := env.host.IDOf("Apple")
	require.Len(t, res.Moved, 1)
	assert.Equal(t, apple, res.Moved[0].Item)
	assert.Equal(t, 20, res.Moved[0].Count)
	assert.Empty(t, res.Failed)
	assert.NotEmpty(t, res.RequestID)

	assert.Equal(t, 0, player.CountOf(apple))
	assert.Equal(t, 20, chest.CountOf(apple))
	assert.Equal(t, 1, player.CountOf(env.host.IDOf("IronSword")), "sword untouched")
	assert.Equal(t, 5, player.CountOf(env.host.IDOf("OreGold")), "ore untouched")
	assert.Equal(t, []memhost.Removal{{
		Source:      "Player",
		Destination: "Chest",
		Item:        apple,
		Count:       20,
		Reason:      host.RemoveReasonNormal,
	}}, env.host.Removals())

	effects.AssertExpectations(t)
}

func TestTransferOreClippedByCapacity(t *testing.T) {
	env := newTestEnv(t)
	player, lydia := env.holder(t, "Player"), env.holder(t, "Lydia")

	engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: env.host})
	res := engine.TransferItemsOfType(env.ctx, player, lydia, category.Ores)

	ore := env.host.IDOf("OreGold")
	require.Len(t, res.Moved, 1)
	assert.Equal(t, 3, res.Moved[0].Count)
	assert.True(t, res.Moved[0].Clipped)
	assert.Equal(t, 2, player.CountOf(ore))
	assert.Equal(t, 3, lydia.CountOf(ore))

	res = engine.TransferItemsOfType(env.ctx, player, lydia, category.Ores)
	assert.Empty(t, res.Moved, "Lydia is full")
	assert.Equal(t, 2, player.CountOf(ore))
}

func TestPolicyFor(t *testing.T) {
	env := newTestEnv(t)
	helmet, ok := env.host.ItemByEditorID("IronHelmet")
	require.True(t, ok)

	overloaded := memhost.NewHolder("Mule", memhost.WithCarryLimit(5))
	overloaded.Put(memhost.Stack{Item: helmet, Count: 2})

	engine := New(Options{Catalog: env.catalog, Host: env.host, MinWeight: 0.5})
	tests := []struct {
		name  string
		src   host.Holder
		dst   host.Holder
		check func(t *testing.T, p Policy)
	}{
		{
			name: "player_destination",
			src:  env.holder(t, "Guard"),
			dst:  env.holder(t, "Player"),
			check: func(t *testing.T, p Policy) {
				assert.False(t, p.Bounded)
				assert.False(t, p.ProtectSpecial)
				assert.NotNil(t, p.Outfit)
				assert.Equal(t, 0.5, p.MinWeight)
			},
		},
		{
			name: "follower_destination",
			src:  env.holder(t, "Player"),
			dst:  env.holder(t, "Lydia"),
			check: func(t *testing.T, p Policy) {
				assert.True(t, p.Bounded)
				assert.InDelta(t, 3.0, p.Capacity, 1e-9)
				assert.True(t, p.ProtectSpecial)
				assert.Nil(t, p.Outfit)
			},
		},
		{
			name: "overloaded_destination",
			src:  env.holder(t, "Player"),
			dst:  overloaded,
			check: func(t *testing.T, p Policy) {
				assert.True(t, p.Bounded)
				assert.Zero(t, p.Capacity, "capacity never goes negative")
			},
		},
		{
			name: "container_destination",
			src:  env.holder(t, "Player"),
			dst:  env.holder(t, "Chest"),
			check: func(t *testing.T, p Policy) {
				assert.False(t, p.Bounded)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, engine.PolicyFor(tt.src, tt.dst))
		})
	}
}

func TestTransferPlayerDestinationIsUnbounded(t *testing.T) {
	env := newTestEnv(t)
	guard, player := env.holder(t, "Guard"), env.holder(t, "Player")

	engine := New(Options{Catalog: env.catalog, Host: env.host})
	res := engine.TransferItemsOfType(env.ctx, guard, player, category.Armor)

	helmet, ring := env.host.IDOf("IronHelmet"), env.host.IDOf("GoldRing")
	assert.Equal(t, 1, guard.CountOf(helmet), "one helmet belongs to the default outfit")
	assert.Equal(t, 1, player.CountOf(helmet))
	assert.Equal(t, 0, guard.CountOf(ring), "worn items only stay put when the player is the source")
	assert.Equal(t, 2, player.CountOf(ring))
	assert.Equal(t, 2, res.Count())
}

func TestTransferProtectsPlayerSpecials(t *testing.T) {
	env := newTestEnv(t)
	player, chest := env.holder(t, "Player"), env.holder(t, "Chest")

	engine := New(Options{Catalog: env.catalog, Host: env.host})
	res := engine.TransferItemsOfType(env.ctx, player, chest, category.Jewelry)

	assert.Empty(t, res.Moved)
	assert.Equal(t, 1, player.CountOf(env.host.IDOf("GoldRing")), "worn ring stays on the player")
}

func TestTransferKeepsWornStackWhenSplit(t *testing.T) {
	env := newTestEnv(t)
	player, chest := env.holder(t, "Player"), env.holder(t, "Chest")
	ring, ok := env.host.ItemByEditorID("GoldRing")
	require.True(t, ok)
	player.Put(memhost.Stack{Item: ring, Count: 1})

	engine := New(Options{Catalog: env.catalog, Host: env.host})
	res := engine.TransferItemsOfType(env.ctx, player, chest, category.Jewelry)

	assert.Empty(t, res.Moved, "an item with a worn stack is protected as a whole")
	assert.Equal(t, 2, player.CountOf(ring.ID))
	assert.Equal(t, 0, chest.CountOf(ring.ID))

	worn := 0
	for _, st := range player.Stacks() {
		if st.Item.ID == ring.ID && st.Worn {
			worn += st.Count
		}
	}
	assert.Equal(t, 1, worn, "worn ring is still worn")
}

func TestTransferReservesOutfitOncePerItem(t *testing.T) {
	env := newTestEnv(t)
	helmet, ok := env.host.ItemByEditorID("IronHelmet")
	require.True(t, ok)

	sentry := memhost.NewHolder("Sentry", memhost.WithOutfit(memhost.Outfit{helmet.ID: 1}))
	sentry.Put(memhost.Stack{Item: helmet, Count: 1})
	sentry.Put(memhost.Stack{Item: helmet, Count: 1})
	require.NoError(t, env.host.AddHolder(sentry))
	player := env.holder(t, "Player")

	engine := New(Options{Catalog: env.catalog, Host: env.host})
	res := engine.TransferItemsOfType(env.ctx, sentry, player, category.Armor)

	require.Len(t, res.Moved, 1)
	assert.Equal(t, 1, res.Moved[0].Count, "one helmet is left for the outfit")
	assert.Equal(t, 1, sentry.CountOf(helmet.ID))
	assert.Equal(t, 1, player.CountOf(helmet.ID))
}

func TestTransferExclusionsAndMinWeight(t *testing.T) {
	env := newTestEnv(t)
	player, chest := env.holder(t, "Player"), env.holder(t, "Chest")

	engine := New(Options{
		Catalog:    env.catalog,
		Host:       env.host,
		MinWeight:  0.75,
		Exclusions: []form.ID{env.host.IDOf("OreGold")},
	})

	res := engine.TransferItemsOfType(env.ctx, player, chest, category.Food)
	assert.Empty(t, res.Moved, "apples are lighter than the minimum weight")

	res = engine.TransferItemsOfType(env.ctx, player, chest, category.Misc)
	assert.Empty(t, res.Moved, "gold ore is excluded")

	res = engine.TransferItemsOfType(env.ctx, player, chest, category.Weapon)
	assert.Equal(t, 1, res.Count())
}

func TestTransferNoops(t *testing.T) {
	env := newTestEnv(t)
	player, chest := env.holder(t, "Player"), env.holder(t, "Chest")
	effects := &mockEffects{}
	engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: effects})

	tests := []struct {
		name        string
		source      host.Holder
		destination host.Holder
		category    category.Category
	}{
		{name: "nil_source", source: nil, destination: chest, category: category.Weapon},
		{name: "nil_destination", source: player, destination: nil, category: category.Weapon},
		{name: "none_category", source: player, destination: chest, category: category.None},
		{name: "out_of_range_category", source: player, destination: chest, category: category.Category(77)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.TransferItemsOfType(env.ctx, tt.source, tt.destination, tt.category)
			assert.Empty(t, res.Moved)
			assert.Empty(t, res.Refresh)
		})
	}
	assert.Empty(t, env.host.Removals())
	effects.AssertNotCalled(t, "QueueRefresh", mock.Anything)
}

type failingHost struct {
	*memhost.Host
	fail form.ID
}

func (f *failingHost) RemoveItem(ctx context.Context, source host.Holder, item host.Item, count int, reason host.RemoveReason, destination host.Holder) error {
	if item.FormID() == f.fail {
		return assert.AnError
	}
	return f.Host.RemoveItem(ctx, source, item, count, reason, destination)
}

func TestTransferContinuesAfterHostFailure(t *testing.T) {
	env := newTestEnv(t)
	chest, player := env.holder(t, "Chest"), env.holder(t, "Player")
	h := &failingHost{Host: env.host, fail: env.host.IDOf("IronSword")}

	engine := New(Options{Catalog: env.catalog, Host: h})
	results := engine.StartTransfer(env.ctx, 1, 0)

	require.Len(t, results, 2)
	require.Len(t, results[0].Failed, 1)
	assert.ErrorIs(t, results[0].Failed[0].Err, assert.AnError)
	assert.Equal(t, 2, chest.CountOf(env.host.IDOf("IronSword")))
	assert.Equal(t, 24, player.CountOf(env.host.IDOf("IronArrow")), "arrows still moved")
}

func TestStartTransfer(t *testing.T) {
	t.Run("take_weapons_and_ammo", func(t *testing.T) {
		env := newTestEnv(t)
		engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: env.host})

		results := engine.StartTransfer(env.ctx, 1, 0)

		require.Len(t, results, 2)
		assert.Equal(t, category.Weapon, results[0].Category)
		assert.Equal(t, category.Ammo, results[1].Category)
		player := env.holder(t, "Player")
		assert.Equal(t, 3, player.CountOf(env.host.IDOf("IronSword")))
		assert.Equal(t, 24, player.CountOf(env.host.IDOf("IronArrow")))

		assert.Equal(t, 2, env.host.PendingUITasks())
		assert.Empty(t, env.host.Refreshed(), "refresh is deferred to the UI task queue")
		env.host.RunUITasks()
		assert.Equal(t, []string{"Player", "Chest", "Player", "Chest"}, env.host.Refreshed())
	})

	t.Run("give_raw_food", func(t *testing.T) {
		env := newTestEnv(t)
		engine := New(Options{Catalog: env.catalog, Host: env.host})

		results := engine.StartTransfer(env.ctx, 16, 1)

		require.Len(t, results, 1)
		assert.Equal(t, "Player", results[0].Source)
		assert.Equal(t, "Chest", results[0].Destination)
		assert.Equal(t, 20, env.holder(t, "Chest").CountOf(env.host.IDOf("Apple")))
	})

	t.Run("unmapped_codes_move_nothing", func(t *testing.T) {
		env := newTestEnv(t)
		effects := &mockEffects{}
		engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: effects})

		for _, pair := range [][2]int{{0, 0}, {10, 0}, {11, 3}, {21, 0}, {2, 9}, {9, 6}, {-4, 1}} {
			assert.Nil(t, engine.StartTransfer(env.ctx, pair[0], pair[1]))
		}
		assert.Empty(t, env.host.Removals())
		effects.AssertNotCalled(t, "QueueRefresh", mock.Anything)
	})

	t.Run("no_open_container", func(t *testing.T) {
		env := newTestEnv(t)
		env.host.CloseContainer()
		engine := New(Options{Catalog: env.catalog, Host: env.host, Effects: env.host})

		results := engine.StartTransfer(env.ctx, 12, 0)
		require.Len(t, results, 2)
		assert.Empty(t, env.host.Removals())
		assert.Equal(t, 0, env.host.PendingUITasks())
	})
}
