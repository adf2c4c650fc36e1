package sdk_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	sdkerrors "github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/host"
	"github.com/skyframe-dev/xplm-sdk/lifecycle"
)

// start builds a session whose start hook runs fn.
func start(t *testing.T, sim *host.Simulator, fn func(s *sdk.Session) error, opts ...sdk.Option) *sdk.Session {
	t.Helper()
	var s *sdk.Session
	s = sdk.New(sim, beacon, lifecycle.Hooks{
		Start: func(context.Context) error { return fn(s) },
	}, append([]sdk.Option{quiet()}, opts...)...)
	sim.Bind(s)
	_, ok := s.Start()
	require.True(t, ok)
	return s
}

func TestEveryStopsWhenCallbackReturnsFalse(t *testing.T) {
	sim := host.New()

	var calls []float32
	start(t, sim, func(s *sdk.Session) error {
		_, err := s.Every(500*time.Millisecond, func(_ context.Context, tick sdk.Tick) bool {
			calls = append(calls, tick.SinceLastCall)
			return len(calls) < 3
		})
		return err
	})

	sim.Run(10, 250*time.Millisecond)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, calls)
	assert.Equal(t, 0, sim.ScheduledLoops())
	assert.Equal(t, 1, sim.Loops(), "a dormant loop stays registered")
}

func TestEveryFrame(t *testing.T) {
	sim := host.New()

	frames := 0
	start(t, sim, func(s *sdk.Session) error {
		_, err := s.EveryFrame(func(context.Context, sdk.Tick) bool {
			frames++
			return true
		})
		return err
	})

	sim.Run(6, 20*time.Millisecond)
	assert.Equal(t, 6, frames)
}

func TestOnCommandSuppressesHostHandling(t *testing.T) {
	sim := host.New()

	pressed := 0
	start(t, sim, func(s *sdk.Session) error {
		_, err := s.OnCommand("sim/operation/pause_toggle", "", func(context.Context) {
			pressed++
		})
		return err
	})

	require.True(t, sim.TriggerCommand("sim/operation/pause_toggle"))
	assert.Equal(t, 1, pressed)
	assert.Equal(t, 0, sim.CommandRuns("sim/operation/pause_toggle"))

	paused, ok := sim.Value("sim/time/paused")
	require.True(t, ok)
	assert.Equal(t, entities.IntValue(0), paused)
}

func TestHandoffDeliversOnFlightLoop(t *testing.T) {
	sim := host.New()
	cfg := config.Default()
	cfg.HandoffCapacity = 4

	var received []string
	s := start(t, sim, func(s *sdk.Session) error {
		mailbox := sdk.NewHandoff[string](s)
		assert.Equal(t, 4, mailbox.Cap())

		var wg sync.WaitGroup
		for _, metar := range []string{"KSEA", "KBFI", "KPAE"} {
			wg.Go(func() { mailbox.Post(metar) })
		}
		wg.Wait()

		_, err := s.EveryFrame(func(context.Context, sdk.Tick) bool {
			mailbox.Drain(func(v string) { received = append(received, v) })
			return true
		})
		return err
	}, sdk.WithConfig(cfg))

	sim.Tick(20 * time.Millisecond)
	assert.ElementsMatch(t, []string{"KSEA", "KBFI", "KPAE"}, received)
	assert.Equal(t, 4, s.Config().HandoffCapacity)
}

func TestNewProbeUsesConfiguredLimits(t *testing.T) {
	sim := host.New(host.WithTerrain(host.FlatTerrain(12)))
	cfg := config.Default()
	cfg.ProbeRateHz = 0.001
	cfg.ProbeBurst = 1

	start(t, sim, func(s *sdk.Session) error {
		probe, err := s.NewProbe()
		require.NoError(t, err)

		hit, err := probe.ProbeTerrain(entities.LocalPoint{X: 1, Y: 500, Z: 1})
		require.NoError(t, err)
		assert.InDelta(t, 12, hit.Location.Y, 1e-6)

		_, err = probe.ProbeTerrain(entities.LocalPoint{X: 2, Y: 500, Z: 2})
		require.NoError(t, err, "same cell is served from the cache")

		_, err = probe.ProbeTerrain(entities.LocalPoint{X: 900, Y: 500, Z: 900})
		assert.ErrorIs(t, err, sdkerrors.ErrNoData)

		assert.Equal(t, 1, sim.ProbeCalls())
		return nil
	}, sdk.WithConfig(cfg))

	assert.Equal(t, 1, sim.Probes())
}

func TestSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Settings = config.Settings{"blink_hz": 2}

	s := sdk.New(host.New(), beacon, lifecycle.Hooks{}, quiet(), sdk.WithConfig(cfg))
	hz, ok := config.GetInt(s.Settings(), "blink_hz")
	require.True(t, ok)
	assert.Equal(t, 2, hz)
}
