package mooremachine

import "github.com/enetx/g"

type (
	// StateName is the name of a state. Sub-states are written
	// "parent.child"; a name holds at most one dot.
	StateName g.String

	// EventName is the name of an event, as understood by an Emitter or
	// by the FSM's own allStateEvent bookkeeping.
	EventName g.String

	// EntryFunc is the code associated with a state. It runs exactly
	// once, synchronously, when the state is entered, and receives the
	// StateHandle scoping that entry.
	EntryFunc func(h *StateHandle) error
)

// stateEntry is the FSM's internal representation of one root state: its
// own entry function plus, for exactly one level of nesting, the entry
// functions of its named sub-states.
type stateEntry struct {
	entry EntryFunc
	subs  map[StateName]EntryFunc
}
