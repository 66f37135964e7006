package mooremachine

import "github.com/enetx/g"

// Machine captures an FSM's public runtime contract, so code that drives
// one (a host, a test double, another FSM coordinating via stateChanged)
// can depend on the interface rather than the concrete type.
type Machine interface {
	GetState() StateName
	IsInState(s StateName) bool
	History() g.Slice[StateName]
	OnState(s StateName, cb func())
	GotoState(target StateName) error
	Emitter
}

var _ Machine = (*FSM)(nil)
