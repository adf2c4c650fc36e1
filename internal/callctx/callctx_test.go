package callctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterAndExit(t *testing.T) {
	tr := New()
	assert.Equal(t, entities.ThreadNone, tr.Current(), "should default to none")

	exitSim := tr.Enter(entities.ThreadSim)
	assert.Equal(t, entities.ThreadSim, tr.Current())

	exitRender := tr.Enter(entities.ThreadRender)
	assert.Equal(t, entities.ThreadRender, tr.Current())
	assert.Equal(t, 2, tr.Depth())

	exitRender()
	assert.Equal(t, entities.ThreadSim, tr.Current())

	exitSim()
	assert.Equal(t, entities.ThreadNone, tr.Current())
	assert.Equal(t, 0, tr.Depth())
}

func TestRequire(t *testing.T) {
	tr := New()

	err := tr.Require("dataref.write", Sim...)
	var tae *errors.ThreadAffinityError
	require.ErrorAs(t, err, &tae)
	assert.Equal(t, entities.ThreadNone, tae.Current)

	exit := tr.Enter(entities.ThreadRender)
	assert.NoError(t, tr.Require("dataref.read", SimOrRender...))
	assert.ErrorIs(t, tr.Require("dataref.write", Sim...), errors.ErrThreadAffinity)
	exit()

	exit = tr.Enter(entities.ThreadSim)
	defer exit()
	assert.NoError(t, tr.Require("dataref.write", Sim...))
}

func TestRequire_NonStrictLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tr := New(WithStrict(false), WithLogger(logger))

	assert.NoError(t, tr.Require("menu.add_item", Sim...))
	assert.Contains(t, buf.String(), "thread affinity violation")
	assert.Contains(t, buf.String(), "menu.add_item")
}

func TestThreadContext(t *testing.T) {
	assert.Equal(t, entities.ThreadNone, ThreadFrom(context.Background()))

	ctx := WithThread(context.Background(), entities.ThreadRender)
	assert.Equal(t, entities.ThreadRender, ThreadFrom(ctx))
}
