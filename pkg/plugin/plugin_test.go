package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/config"
	"github.com/walteh/quickxfer/pkg/memhost"
)

const keywords = `
  - {editor_id: ArmorJewelry, plugin: Skyrim.esm, local: "0x08F95A", type: keyword}
  - {editor_id: VendorItemSpellTome, plugin: Skyrim.esm, local: "0x0937A5", type: keyword}
`

const world = `
load_order: [Skyrim.esm]
items:%s
  - {editor_id: Apple, plugin: Skyrim.esm, local: "0x064B2F", type: alchemy, weight: 0.5, food: true}
  - {editor_id: Bread, plugin: Skyrim.esm, local: "0x065C97", type: alchemy, weight: 0.2, food: true}
holders:
  - name: Player
    player: true
    inventory:
      - {item: Apple, count: 4}
      - {item: Bread, count: 2}
  - name: Chest
open: Chest
`

type mockBridge struct {
	mock.Mock
	fn func(action, subtype int)
}

func (m *mockBridge) RegisterFunction(name, script string, fn func(action, subtype int)) error {
	args := m.Called(name, script, fn)
	m.fn = fn
	return args.Error(0)
}

type env struct {
	ctx    context.Context
	host   *memhost.Host
	bridge *mockBridge
	cfg    *config.Config
}

func newEnv(t *testing.T, withKeywords bool) *env {
	t.Helper()
	t.Setenv(config.DataDirEnv, "")
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	kw := ""
	if withKeywords {
		kw = keywords
	}
	h, err := memhost.ParseWorld(ctx, []byte(fmt.Sprintf(world, kw)))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_food.txt"), []byte("Apple\nBread\n"), 0o644))

	cfg := config.Default()
	cfg.DataDir = dir
	return &env{ctx: ctx, host: h, bridge: &mockBridge{}, cfg: cfg}
}

func (e *env) plugin() *Plugin {
	return New(Options{
		Config:   e.cfg,
		Resolver: e.host,
		Host:     e.host,
		Effects:  e.host,
		Bridge:   e.bridge,
	})
}

func TestOnMessageRegistersOnce(t *testing.T) {
	e := newEnv(t, true)
	e.bridge.On("RegisterFunction", FunctionName, ScriptName, mock.Anything).Return(nil).Once()
	p := e.plugin()

	require.NoError(t, p.OnMessage(e.ctx, MessagePostLoad))
	assert.False(t, p.Ready(), "only the data-loaded message starts the plugin")
	assert.Nil(t, p.Catalog())

	require.NoError(t, p.OnMessage(e.ctx, MessageDataLoaded))
	require.NoError(t, p.OnMessage(e.ctx, MessageDataLoaded))
	assert.True(t, p.Ready())
	e.bridge.AssertExpectations(t)

	assert.Equal(t, 2, p.Catalog().Len(category.RawFood))
	assert.Equal(t, 0, p.Report().Rejected())
	require.NotNil(t, p.Engine())

	require.NotNil(t, e.bridge.fn)
	e.bridge.fn(16, 1)

	chest, _ := e.host.Holder("Chest")
	assert.Equal(t, 4, chest.CountOf(e.host.IDOf("Apple")))
	assert.Equal(t, 2, chest.CountOf(e.host.IDOf("Bread")))

	e.bridge.fn(99, 0)
	assert.Len(t, e.host.Removals(), 2, "unknown codes are ignored")
}

func TestOnMessageFailsWithoutKeywords(t *testing.T) {
	e := newEnv(t, false)
	p := e.plugin()

	err := p.OnMessage(e.ctx, MessageDataLoaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading intrinsic tags")
	assert.False(t, p.Ready())
	e.bridge.AssertNotCalled(t, "RegisterFunction", mock.Anything, mock.Anything, mock.Anything)

	again := p.OnMessage(e.ctx, MessageDataLoaded)
	assert.Equal(t, err, again, "the first outcome sticks")
}

func TestOnMessageBridgeFailure(t *testing.T) {
	e := newEnv(t, true)
	e.bridge.On("RegisterFunction", FunctionName, ScriptName, mock.Anything).Return(errors.New("vm not ready"))
	p := e.plugin()

	err := p.OnMessage(e.ctx, MessageDataLoaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vm not ready")
	assert.False(t, p.Ready())
}

func TestOnMessageExclusions(t *testing.T) {
	e := newEnv(t, true)
	e.cfg.Exclude = []string{"Apple", "NoSuchItem", "0x000123~Missing.esp"}
	e.bridge.On("RegisterFunction", FunctionName, ScriptName, mock.Anything).Return(nil)
	p := e.plugin()

	require.NoError(t, p.OnMessage(e.ctx, MessageDataLoaded))
	e.bridge.fn(16, 1)

	chest, _ := e.host.Holder("Chest")
	assert.Equal(t, 0, chest.CountOf(e.host.IDOf("Apple")), "excluded items stay put")
	assert.Equal(t, 2, chest.CountOf(e.host.IDOf("Bread")))
}

func TestOnMessageMissingCollaborators(t *testing.T) {
	p := New(Options{})
	err := p.OnMessage(context.Background(), MessageDataLoaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a resolver")
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "data_loaded", MessageDataLoaded.String())
	assert.Equal(t, "unknown", Message(42).String())
}

func TestStartTransferBeforeReady(t *testing.T) {
	e := newEnv(t, true)
	p := e.plugin()
	assert.Nil(t, p.StartTransfer(e.ctx, 16, 1))
	assert.Empty(t, e.host.Removals())
}

func TestStartTransferResults(t *testing.T) {
	e := newEnv(t, true)
	e.bridge.On("RegisterFunction", FunctionName, ScriptName, mock.Anything).Return(nil)
	p := e.plugin()
	require.NoError(t, p.OnMessage(e.ctx, MessageDataLoaded))

	results := p.StartTransfer(e.ctx, 5, 0)
	require.Len(t, results, 1)
	assert.Equal(t, category.Food, results[0].Category)
	assert.Equal(t, 6, results[0].Count())
	assert.Equal(t, 1, e.host.PendingUITasks(), "the refresh waits for the UI task queue")
}
