package host

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

type simHandler struct {
	refcon ports.Refcon
	before bool
}

type simCommand struct {
	name        string
	description string
	action      func(phase entities.CommandPhase)
	handlers    []simHandler
	raw         ports.RawHandle
	held        int
	runs        int
}

// DefineCommand adds a host command whose default handling calls action.
// A nil action only counts runs.
func (s *Simulator) DefineCommand(name, description string, action func(phase entities.CommandPhase)) ports.RawHandle {
	if raw, ok := s.commandIDs[name]; ok {
		s.commands[raw].action = action
		return raw
	}
	raw := s.alloc()
	s.commands[raw] = &simCommand{raw: raw, name: name, description: description, action: action}
	s.commandIDs[name] = raw
	return raw
}

// FindCommand implements ports.Host.
func (s *Simulator) FindCommand(name string) ports.RawHandle {
	return s.commandIDs[name]
}

// CreateCommand implements ports.Host. An existing command is returned
// unchanged.
func (s *Simulator) CreateCommand(name, description string) ports.RawHandle {
	if raw, ok := s.commandIDs[name]; ok {
		return raw
	}
	return s.DefineCommand(name, description, nil)
}

// CommandBegin implements ports.Host. The command stays held, receiving a
// continue phase every Tick, until CommandEnd.
func (s *Simulator) CommandBegin(cmd ports.RawHandle) {
	c, ok := s.commands[cmd]
	if !ok {
		return
	}
	c.held++
	s.dispatchCommand(c, entities.CommandBegin)
}

// CommandEnd implements ports.Host.
func (s *Simulator) CommandEnd(cmd ports.RawHandle) {
	c, ok := s.commands[cmd]
	if !ok || c.held == 0 {
		return
	}
	c.held--
	s.dispatchCommand(c, entities.CommandEnd)
}

// CommandOnce implements ports.Host.
func (s *Simulator) CommandOnce(cmd ports.RawHandle) {
	c, ok := s.commands[cmd]
	if !ok {
		return
	}
	s.dispatchCommand(c, entities.CommandBegin)
	s.dispatchCommand(c, entities.CommandEnd)
}

// RegisterCommandHandler implements ports.Host.
func (s *Simulator) RegisterCommandHandler(cmd ports.RawHandle, before bool, refcon ports.Refcon) {
	c, ok := s.commands[cmd]
	if !ok {
		return
	}
	c.handlers = append(c.handlers, simHandler{refcon: refcon, before: before})
}

// UnregisterCommandHandler implements ports.Host.
func (s *Simulator) UnregisterCommandHandler(cmd ports.RawHandle, before bool, refcon ports.Refcon) {
	c, ok := s.commands[cmd]
	if !ok {
		return
	}
	for i, h := range c.handlers {
		if h.refcon == refcon && h.before == before {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return
		}
	}
}

// dispatchCommand runs before-handlers, the default handling and then
// after-handlers. A handler returning 0 stops everything after it.
func (s *Simulator) dispatchCommand(c *simCommand, phase entities.CommandPhase) {
	handlers := append([]simHandler(nil), c.handlers...)
	for _, h := range handlers {
		if h.before && s.requireSink().Command(h.refcon, c.raw, phase) == 0 {
			return
		}
	}
	if phase == entities.CommandBegin {
		c.runs++
	}
	if c.action != nil {
		c.action(phase)
	}
	for _, h := range handlers {
		if !h.before && s.requireSink().Command(h.refcon, c.raw, phase) == 0 {
			return
		}
	}
}

func (s *Simulator) continueCommands() {
	for _, c := range s.commands {
		if c.held > 0 {
			s.dispatchCommand(c, entities.CommandContinue)
		}
	}
}

// TriggerCommand fires a command once by name, as a key press would.
// It reports false for unknown names.
func (s *Simulator) TriggerCommand(name string) bool {
	raw, ok := s.commandIDs[name]
	if !ok {
		return false
	}
	s.CommandOnce(raw)
	return true
}

// CommandRuns returns how many times the host's default handling of the
// command began. Runs stopped by a before-handler are not counted.
func (s *Simulator) CommandRuns(name string) int {
	if c, ok := s.commands[s.commandIDs[name]]; ok {
		return c.runs
	}
	return 0
}

// CommandHandlers returns the number of handlers registered on a command.
func (s *Simulator) CommandHandlers(name string) int {
	if c, ok := s.commands[s.commandIDs[name]]; ok {
		return len(c.handlers)
	}
	return 0
}
