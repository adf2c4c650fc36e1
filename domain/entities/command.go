package entities

// CommandPhase is the stage of a command invocation.
type CommandPhase int

const (
	CommandBegin    CommandPhase = 0
	CommandContinue CommandPhase = 1
	CommandEnd      CommandPhase = 2
)

func (p CommandPhase) String() string {
	switch p {
	case CommandBegin:
		return "begin"
	case CommandContinue:
		return "continue"
	case CommandEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Disposition is a command handler's verdict.
type Disposition int

const (
	// PassThrough lets the host and other handlers process the command.
	PassThrough Disposition = iota
	// Handled suppresses further processing.
	Handled
)

// Raw converts to the host's convention (1 = continue, 0 = stop).
func (d Disposition) Raw() int {
	if d == Handled {
		return 0
	}
	return 1
}

// HandlerOrder selects whether a command handler runs before or after the
// host's default handling.
type HandlerOrder bool

const (
	Before HandlerOrder = true
	After  HandlerOrder = false
)

func (o HandlerOrder) String() string {
	if o == Before {
		return "before"
	}
	return "after"
}

// MenuCheck is a menu item's checkmark state.
type MenuCheck int

const (
	MenuNoCheck   MenuCheck = 0
	MenuUnchecked MenuCheck = 1
	MenuChecked   MenuCheck = 2
)
