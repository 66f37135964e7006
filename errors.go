package mooremachine

import "fmt"

// ErrUnknownState is returned when a transition target's root segment has
// no registered entry function.
type ErrUnknownState struct {
	State StateName
}

func (e *ErrUnknownState) Error() string {
	return fmt.Sprintf("mooremachine: unknown FSM state: %q", string(e.State))
}

// ErrUnknownSubState is returned when a transition target's root segment
// exists but its sub-segment does not, or the name has more than one dot.
type ErrUnknownSubState struct {
	State StateName
}

func (e *ErrUnknownSubState) Error() string {
	return fmt.Sprintf("mooremachine: unknown FSM sub-state: %q", string(e.State))
}

// ErrHandleAlreadyUsed is returned when GotoState is called on a
// StateHandle that has already been used to cause a transition.
type ErrHandleAlreadyUsed struct {
	Current   StateName
	Attempted StateName
	Used      StateName
}

func (e *ErrHandleAlreadyUsed) Error() string {
	return fmt.Sprintf(
		"mooremachine: FSM attempted to leave state %q towards %q via a handle that was already used to enter state %q",
		string(e.Current), string(e.Attempted), string(e.Used),
	)
}

// ErrInvalidTransition is returned when a handle's validTransitions list
// is set and the requested target is not a member of it.
type ErrInvalidTransition struct {
	From StateName
	To   StateName
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("mooremachine: invalid FSM transition: %s => %s", string(e.From), string(e.To))
}

// ErrAllStateEventMissing is returned when, after a transition completes,
// a required all-state event has no registered listener.
type ErrAllStateEventMissing struct {
	State StateName
	Event EventName
}

func (e *ErrAllStateEventMissing) Error() string {
	return fmt.Sprintf(
		"mooremachine: state %q entered without a listener for required all-state event %q",
		string(e.State), string(e.Event),
	)
}

// ErrArgumentType is returned when a caller supplies an argument of the
// wrong shape: a re-entrant gotoState while one is already pending, a
// GotoState on a machine whose run loop has stopped, or similar misuse
// that isn't one of the other structured error kinds. (A state name with
// more than one dot is reported as ErrUnknownSubState.)
type ErrArgumentType struct {
	Argument string
	Reason   string
}

func (e *ErrArgumentType) Error() string {
	return fmt.Sprintf("mooremachine: argument %q: %s", e.Argument, e.Reason)
}

// ErrEntryFunction wraps an error returned by, or a panic recovered from,
// a state's entry function. The state is committed and inTransition is
// cleared before this error reaches the caller; see step 5 of transition
// in fsm.go.
type ErrEntryFunction struct {
	State StateName
	Err   error
}

func (e *ErrEntryFunction) Error() string {
	return fmt.Sprintf("mooremachine: entry function for state %q failed: %v", string(e.State), e.Err)
}

func (e *ErrEntryFunction) Unwrap() error { return e.Err }
