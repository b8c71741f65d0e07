package raysource

import (
	"fmt"

	"github.com/san-kum/arfall/internal/dynamo"
)

// SourceID names an input device. Each source owns its own grab state.
type SourceID int

const (
	Pointer SourceID = iota
	Controller
)

func (s SourceID) String() string {
	switch s {
	case Pointer:
		return "pointer"
	case Controller:
		return "controller"
	default:
		return fmt.Sprintf("SourceID(%d)", int(s))
	}
}

type Phase int

const (
	Begin Phase = iota
	Move
	End
	// Command carries a discrete gesture rather than a drag phase.
	Command
)

func (p Phase) String() string {
	switch p {
	case Begin:
		return "begin"
	case Move:
		return "move"
	case End:
		return "end"
	case Command:
		return "command"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type CommandKind int

const (
	NoCommand CommandKind = iota
	ToggleGround
)

// Event is one normalized gesture update.
type Event struct {
	Source  SourceID
	Phase   Phase
	Ray     dynamo.Ray
	Command CommandKind
}

// Source produces world-space rays and the gesture events queued since the
// last Drain.
type Source interface {
	ID() SourceID
	CurrentRay() (dynamo.Ray, bool)
	Drain() []Event
}

type queue struct {
	events []Event
}

func (q *queue) push(e Event) {
	q.events = append(q.events, e)
}

func (q *queue) drain() []Event {
	out := q.events
	q.events = nil
	return out
}
