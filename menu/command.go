package menu

import (
	"context"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// CommandRef identifies a host command.
type CommandRef = handle.Handle[handle.CommandTag]

// HandlerID identifies a registered command handler.
type HandlerID = handle.Handle[handle.CommandHandlerTag]

// CommandHandler runs on the sim thread for each phase of a command.
// Returning entities.Handled stops the host and later handlers.
type CommandHandler func(ctx context.Context, phase entities.CommandPhase) entities.Disposition

// Handler positions relative to the host's own handling.
const (
	Before = entities.Before
	After  = entities.After
)

type handlerEntry struct {
	name   string
	refcon ports.Refcon
}

func (d *Dispatcher) command(name string, create func() ports.RawHandle) (CommandRef, error) {
	if err := d.calls.Require("command.find", callctx.Sim...); err != nil {
		return CommandRef{}, err
	}
	if ref, ok := d.commands[name]; ok && handle.IsValid(d.registry, ref) {
		return ref, nil
	}

	raw := create()
	if raw == 0 {
		return CommandRef{}, &errors.NotFoundError{Kind: "command", Name: name}
	}
	// Host commands outlive plugins, so releasing a ref never destroys one.
	ref, err := handle.Acquire[handle.CommandTag](d.registry, raw, nil)
	if err != nil {
		return CommandRef{}, err
	}
	d.commands[name] = ref
	return ref, nil
}

// FindCommand looks up an existing command.
func (d *Dispatcher) FindCommand(name string) (CommandRef, error) {
	return d.command(name, func() ports.RawHandle { return d.host.FindCommand(name) })
}

// FindOrCreateCommand returns the named command, creating it if needed.
func (d *Dispatcher) FindOrCreateCommand(name, description string) (CommandRef, error) {
	return d.command(name, func() ports.RawHandle {
		if raw := d.host.FindCommand(name); raw != 0 {
			return raw
		}
		return d.host.CreateCommand(name, description)
	})
}

func (d *Dispatcher) commandRaw(op string, cmd CommandRef) (ports.RawHandle, error) {
	raw, err := handle.Raw(d.registry, cmd)
	if err != nil {
		return 0, err
	}
	if err := d.calls.Require(op, callctx.Sim...); err != nil {
		return 0, err
	}
	return raw, nil
}

// RegisterHandler adds handler to cmd, before or after the host's own
// handling.
func (d *Dispatcher) RegisterHandler(cmd CommandRef, handler CommandHandler, when entities.HandlerOrder) (HandlerID, error) {
	raw, err := d.commandRaw("command.register_handler", cmd)
	if err != nil {
		return HandlerID{}, err
	}

	entry := &handlerEntry{name: "command:" + cmd.String() + ":" + when.String()}
	entry.refcon = d.table.AddCommand(entry.name, func(ctx context.Context, phase entities.CommandPhase) entities.Disposition {
		return handler(ctx, phase)
	})
	d.host.RegisterCommandHandler(raw, bool(when), entry.refcon)

	// Handlers have no host object of their own; the refcon stands in.
	id, err := handle.Acquire[handle.CommandHandlerTag](d.registry, ports.RawHandle(entry.refcon), func(ports.RawHandle) {
		d.host.UnregisterCommandHandler(raw, bool(when), entry.refcon)
		d.table.Remove(entry.refcon)
	})
	if err != nil {
		d.host.UnregisterCommandHandler(raw, bool(when), entry.refcon)
		d.table.Remove(entry.refcon)
		return HandlerID{}, err
	}
	d.logger.Debug("menu: command handler registered", "handler", entry.name, "id", id.String())
	return id, nil
}

// UnregisterHandler removes a handler.
func (d *Dispatcher) UnregisterHandler(id HandlerID) error {
	if err := d.calls.Require("command.unregister_handler", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(d.registry, id)
}

// Trigger runs cmd once, begin then end.
func (d *Dispatcher) Trigger(cmd CommandRef) error {
	raw, err := d.commandRaw("command.trigger", cmd)
	if err != nil {
		return err
	}
	d.host.CommandOnce(raw)
	return nil
}

// Begin starts holding cmd. The host sends continue phases until End.
func (d *Dispatcher) Begin(cmd CommandRef) error {
	raw, err := d.commandRaw("command.begin", cmd)
	if err != nil {
		return err
	}
	d.host.CommandBegin(raw)
	return nil
}

// End releases a command started with Begin.
func (d *Dispatcher) End(cmd CommandRef) error {
	raw, err := d.commandRaw("command.end", cmd)
	if err != nil {
		return err
	}
	d.host.CommandEnd(raw)
	return nil
}
