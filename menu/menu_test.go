package menu_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	sdkerrors "github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/host"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/skyframe-dev/xplm-sdk/menu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DispatcherSuite struct {
	suite.Suite
	sim        *host.Simulator
	registry   *handle.Registry
	dispatcher *menu.Dispatcher
	exit       func()
}

func (s *DispatcherSuite) SetupTest() {
	s.sim = host.New()
	s.registry = handle.NewRegistry()
	calls := callctx.New()
	table := dispatch.NewTable(dispatch.WithMiddleware(
		dispatch.PanicRecoveryMiddleware(),
		dispatch.ThreadMiddleware(calls),
	))
	s.sim.Bind(table)
	s.dispatcher = menu.New(s.sim, s.registry, calls, table)
	s.exit = calls.Enter(entities.ThreadSim)
}

func (s *DispatcherSuite) TearDownTest() {
	s.exit()
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) TestMenuItemBoundToCommand() {
	root, err := s.dispatcher.Root()
	s.Require().NoError(err)
	test, err := s.dispatcher.CreateMenu(root, "Test", nil)
	s.Require().NoError(err)
	cmd, err := s.dispatcher.FindOrCreateCommand("test/action", "Test action")
	s.Require().NoError(err)
	_, err = s.dispatcher.AddItem(test, "Action", cmd, nil)
	s.Require().NoError(err)

	observed := 0
	_, err = s.dispatcher.RegisterHandler(cmd, func(_ context.Context, phase entities.CommandPhase) entities.Disposition {
		if phase == entities.CommandBegin {
			observed++
		}
		return entities.Handled
	}, menu.Before)
	s.Require().NoError(err)

	s.Require().NoError(s.sim.ClickMenuItem("Test", "Action"))
	s.Equal(1, observed)
	s.Require().NoError(s.dispatcher.Trigger(cmd))
	s.Equal(2, observed)

	// Handled in the before phase stops the host's own handling.
	s.Zero(s.sim.CommandRuns("test/action"))
}

func (s *DispatcherSuite) TestMenuHandlerReceivesClientData() {
	root, err := s.dispatcher.Root()
	s.Require().NoError(err)

	var gotItem menu.ItemIndex
	var gotData any
	tools, err := s.dispatcher.CreateMenu(root, "Tools", func(_ context.Context, item menu.ItemIndex, data any) {
		gotItem, gotData = item, data
	})
	s.Require().NoError(err)

	_, err = s.dispatcher.AddItem(tools, "First", menu.CommandRef{}, "one")
	s.Require().NoError(err)
	second, err := s.dispatcher.AddItem(tools, "Second", menu.CommandRef{}, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.sim.ClickMenuItem("Tools", "Second"))
	s.Equal(second, gotItem)
	s.Equal(2, gotData)
	s.Equal(tools, gotItem.Menu())

	data, err := s.dispatcher.ClientData(second)
	s.Require().NoError(err)
	s.Equal(2, data)
}

func (s *DispatcherSuite) TestItemState() {
	root, _ := s.dispatcher.Root()
	m, err := s.dispatcher.CreateMenu(root, "Options", nil)
	s.Require().NoError(err)
	a, _ := s.dispatcher.AddItem(m, "Alpha", menu.CommandRef{}, nil)
	sep, err := s.dispatcher.AddSeparator(m)
	s.Require().NoError(err)
	b, _ := s.dispatcher.AddItem(m, "Beta", menu.CommandRef{}, nil)

	s.Require().NoError(s.dispatcher.CheckItem(b, entities.MenuChecked))
	s.Require().NoError(s.dispatcher.EnableItem(a, false))
	s.Require().NoError(s.dispatcher.SetItemTitle(b, "Gamma"))

	items, err := s.sim.MenuItems("Options")
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.False(items[0].Enabled)
	s.True(items[1].Separator)
	s.Equal("Gamma", items[2].Name)
	s.Equal(entities.MenuChecked, items[2].Check)

	// Removing an earlier item keeps later indexes pointing at the same item.
	s.Require().NoError(s.dispatcher.RemoveItem(sep))
	s.Require().NoError(s.dispatcher.CheckItem(b, entities.MenuUnchecked))
	items, _ = s.sim.MenuItems("Options")
	s.Require().Len(items, 2)
	s.Equal(entities.MenuUnchecked, items[1].Check)

	title, err := s.dispatcher.Title(b)
	s.Require().NoError(err)
	s.Equal("Gamma", title)

	err = s.dispatcher.SetItemTitle(sep, "x")
	s.True(errors.Is(err, sdkerrors.ErrUseAfterRelease))
}

func (s *DispatcherSuite) TestDestroyMenuInvalidatesSubtree() {
	root, _ := s.dispatcher.Root()
	parent, err := s.dispatcher.CreateMenu(root, "Parent", nil)
	s.Require().NoError(err)
	child, err := s.dispatcher.CreateMenu(parent, "Child", nil)
	s.Require().NoError(err)
	item, err := s.dispatcher.AddItem(child, "Leaf", menu.CommandRef{}, nil)
	s.Require().NoError(err)
	s.Equal(2, s.sim.Menus())

	s.Require().NoError(s.dispatcher.DestroyMenu(parent))
	s.Zero(s.sim.Menus())

	_, err = s.dispatcher.AddItem(parent, "Late", menu.CommandRef{}, nil)
	s.True(errors.Is(err, sdkerrors.ErrUseAfterRelease))
	_, err = s.dispatcher.AddItem(child, "Late", menu.CommandRef{}, nil)
	s.True(errors.Is(err, sdkerrors.ErrUseAfterRelease))
	s.True(errors.Is(s.dispatcher.CheckItem(item, entities.MenuChecked), sdkerrors.ErrUseAfterRelease))
	s.True(errors.Is(s.dispatcher.DestroyMenu(child), sdkerrors.ErrUseAfterRelease))

	// The parent's own item is gone from the Plugins menu.
	items, err := s.sim.MenuItems()
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *DispatcherSuite) TestScopeTeardownWithdrawsMenus() {
	s.registry.BeginScope(entities.ScopeEnabled)
	root, _ := s.dispatcher.Root()
	m, err := s.dispatcher.CreateMenu(root, "Temp", nil)
	s.Require().NoError(err)
	cmd, err := s.dispatcher.FindOrCreateCommand("test/temp", "")
	s.Require().NoError(err)
	_, err = s.dispatcher.AddItem(root, "Direct", cmd, nil)
	s.Require().NoError(err)
	_, err = s.dispatcher.RegisterHandler(cmd, func(context.Context, entities.CommandPhase) entities.Disposition {
		return entities.PassThrough
	}, menu.After)
	s.Require().NoError(err)

	s.registry.ReleaseScope(entities.ScopeEnabled)
	s.Zero(s.sim.Menus())
	items, _ := s.sim.MenuItems()
	s.Empty(items)
	s.Zero(s.sim.CommandHandlers("test/temp"))
	s.False(handle.IsValid(s.registry, m))

	// A new root is handed out after teardown.
	again, err := s.dispatcher.Root()
	s.Require().NoError(err)
	s.NotEqual(root, again)
}

func (s *DispatcherSuite) TestRemoveItemWithSubmenu() {
	root, _ := s.dispatcher.Root()
	sub, err := s.dispatcher.CreateMenu(root, "Sub", nil)
	s.Require().NoError(err)
	_, err = s.dispatcher.AddItem(root, "After", menu.CommandRef{}, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.dispatcher.DestroyMenu(sub))
	items, _ := s.sim.MenuItems()
	s.Require().Len(items, 1)
	s.Equal("After", items[0].Name)
}

func TestCommands(t *testing.T) {
	sim := host.New()
	calls := callctx.New()
	table := dispatch.NewTable(dispatch.WithMiddleware(
		dispatch.PanicRecoveryMiddleware(),
		dispatch.ThreadMiddleware(calls),
	))
	sim.Bind(table)
	registry := handle.NewRegistry()
	d := menu.New(sim, registry, calls, table)
	defer calls.Enter(entities.ThreadSim)()

	t.Run("find unknown", func(t *testing.T) {
		_, err := d.FindCommand("nope/nothing")
		assert.True(t, errors.Is(err, sdkerrors.ErrNotFound))
	})

	t.Run("find is idempotent", func(t *testing.T) {
		a, err := d.FindCommand("sim/operation/pause_toggle")
		require.NoError(t, err)
		b, err := d.FindCommand("sim/operation/pause_toggle")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("before and after handlers", func(t *testing.T) {
		cmd, err := d.FindCommand("sim/operation/pause_toggle")
		require.NoError(t, err)

		var order []string
		before, err := d.RegisterHandler(cmd, func(_ context.Context, phase entities.CommandPhase) entities.Disposition {
			order = append(order, "before:"+phase.String())
			return entities.PassThrough
		}, menu.Before)
		require.NoError(t, err)
		_, err = d.RegisterHandler(cmd, func(_ context.Context, phase entities.CommandPhase) entities.Disposition {
			order = append(order, "after:"+phase.String())
			return entities.PassThrough
		}, menu.After)
		require.NoError(t, err)

		require.NoError(t, d.Trigger(cmd))
		assert.Equal(t, []string{"before:begin", "after:begin", "before:end", "after:end"}, order)
		assert.Equal(t, 1, sim.CommandRuns("sim/operation/pause_toggle"))

		require.NoError(t, d.UnregisterHandler(before))
		assert.True(t, errors.Is(d.UnregisterHandler(before), sdkerrors.ErrUseAfterRelease))
		assert.Equal(t, 1, sim.CommandHandlers("sim/operation/pause_toggle"))
	})

	t.Run("held command", func(t *testing.T) {
		cmd, err := d.FindOrCreateCommand("test/hold", "Hold me")
		require.NoError(t, err)
		var phases []entities.CommandPhase
		_, err = d.RegisterHandler(cmd, func(_ context.Context, phase entities.CommandPhase) entities.Disposition {
			phases = append(phases, phase)
			return entities.PassThrough
		}, menu.Before)
		require.NoError(t, err)

		require.NoError(t, d.Begin(cmd))
		sim.Tick(0)
		require.NoError(t, d.End(cmd))
		assert.Equal(t, []entities.CommandPhase{entities.CommandBegin, entities.CommandContinue, entities.CommandEnd}, phases)
	})

	t.Run("panicking handler passes through", func(t *testing.T) {
		cmd, err := d.FindOrCreateCommand("test/panic", "")
		require.NoError(t, err)
		_, err = d.RegisterHandler(cmd, func(context.Context, entities.CommandPhase) entities.Disposition {
			panic("handler bug")
		}, menu.Before)
		require.NoError(t, err)

		assert.NotPanics(t, func() { _ = d.Trigger(cmd) })
		assert.Equal(t, 1, sim.CommandRuns("test/panic"))
	})
}

func TestMenuRequiresSimThread(t *testing.T) {
	sim := host.New()
	table := dispatch.NewTable()
	sim.Bind(table)
	d := menu.New(sim, handle.NewRegistry(), callctx.New(), table)

	_, err := d.Root()
	assert.True(t, errors.Is(err, sdkerrors.ErrThreadAffinity))
}
