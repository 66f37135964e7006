// Package mooremachine provides a framework for expressing asynchronous
// programs as Moore finite state machines. Code associated with a state
// runs exactly once, on entry; listeners and timers registered while a
// state is active are scoped to that state via its StateHandle and are
// torn down automatically when the machine leaves it, eliminating the
// stale-callback bug class that plagues ad-hoc event-driven code.
package mooremachine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/enetx/g"
)

// StateChanged is the event name the FSM emits, asynchronously, once per
// successful transition, including the initial one.
const StateChanged EventName = "stateChanged"

// historyCapacity bounds how many recently-entered state names History
// retains. A diagnostic convenience, not a load-bearing contract.
const historyCapacity = 7

// FSM is a single Moore-machine instance. It also behaves as an event
// emitter (via the embedded Emitter) so that stateChanged — and, for
// inter-FSM coordination, any other event an FSM chooses to Emit — can be
// observed by a host, or wired directly into another FSM's handle.On
// calls.
type FSM struct {
	Emitter

	stateMu sync.RWMutex
	state   StateName
	history g.Slice[StateName]

	handle *StateHandle

	// inTransition/hasNext/nextState/toEmit are deliberately
	// unsynchronized: by construction (see loop.go) they are only ever
	// touched by the single goroutine currently executing transition().
	inTransition bool
	hasNext      bool
	nextState    StateName
	toEmit       g.Slice[StateName]

	allStateEvents g.Set[EventName]
	states         map[StateName]*stateEntry

	timers TimerSource
	loop   *runLoop

	// Data and Meta are the Go rendering of "a subclass may read/mutate
	// FSM instance fields" (entry functions reach them via
	// handle.FSM().Data / .Meta), mirroring the teacher's Context.Data /
	// Context.Meta fields.
	Data *g.MapSafe[g.String, any]
	Meta *g.MapSafe[g.String, any]
}

// GetState returns the full current state name (possibly dotted, for a
// sub-state).
func (f *FSM) GetState() StateName {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()

	return f.state
}

// IsInState reports whether the current state equals s, or s is the
// current state's parent (the current state begins with s + ".").
func (f *FSM) IsInState(s StateName) bool {
	cur := f.GetState()

	return cur == s || strings.HasPrefix(string(cur), string(s)+".")
}

// History returns a copy of the bounded history of recently entered
// states, oldest first.
func (f *FSM) History() g.Slice[StateName] {
	f.stateMu.RLock()
	defer f.stateMu.RUnlock()

	return f.history.Clone()
}

// OnState invokes cb synchronously if the FSM is already in s (or any
// sub-state of s); otherwise it subscribes to stateChanged and invokes cb
// the first time the new state satisfies that predicate. A non-matching
// change re-arms the subscription rather than consuming it.
func (f *FSM) OnState(s StateName, cb func()) {
	if f.IsInState(s) {
		cb()
		return
	}

	var handler HandlerFunc
	handler = func(args ...any) {
		if f.IsInState(s) {
			f.RemoveListener(StateChanged, handler)
			cb()
		}
	}

	f.On(StateChanged, handler)
}

// GotoState is the public escape hatch onto the transition routine. The
// sanctioned path for code inside an entry function is handle.GotoState;
// this exists for callers outside the FSM's own call stack (e.g. a host
// driving the machine directly from program startup) and is safe to call
// from any goroutine — it is marshalled onto the FSM's run loop and
// blocks until the transition (and any it triggers re-entrantly) settles.
func (f *FSM) GotoState(target StateName) error {
	return f.loop.submitWait(func() error {
		return f.transition(target)
	})
}

func rootOf(s StateName) StateName {
	if i := strings.IndexByte(string(s), '.'); i >= 0 {
		return s[:i]
	}

	return s
}

// transition is the internal routine described in the package's design
// notes. It must only ever be called directly, as a plain function call,
// by code already running on the FSM's single owning goroutine: the
// Builder during initial construction, StateHandle.GotoState from within
// an active entry function, or a thunk submitted to the run loop.
func (f *FSM) transition(target StateName) error {
	// Step 1: re-entrancy guard. An entry function that calls gotoState
	// inline re-enters this routine while the outer call is still
	// running; queue it and let the outer call drain it at step 8.
	if f.inTransition {
		if f.hasNext {
			return &ErrArgumentType{Argument: "target", Reason: "a transition is already pending"}
		}

		f.nextState = target
		f.hasNext = true

		return nil
	}

	// validTransitions gates every caller alike — a handle's GotoState, the
	// re-entrant drain at step 8, and the public FSM.GotoState escape
	// hatch, which reaches here without ever touching a handle. Checking
	// it here, against the currently active handle, is what makes the
	// gate hold regardless of entry point.
	if f.handle != nil && f.handle.validTransitions != nil && !f.handle.validTransitions.Contains(target) {
		return &ErrInvalidTransition{From: f.handle.state, To: target}
	}

	segments := strings.SplitN(string(target), ".", 3)
	if len(segments) > 2 {
		return &ErrUnknownSubState{State: target}
	}

	root := StateName(segments[0])

	entry, ok := f.states[root]
	if !ok {
		return &ErrUnknownState{State: target}
	}

	var fn EntryFunc

	if len(segments) == 2 {
		leaf := StateName(segments[1])

		sub, ok := entry.subs[leaf]
		if !ok {
			return &ErrUnknownSubState{State: target}
		}

		fn = sub
	} else {
		if entry.entry == nil {
			return &ErrUnknownState{State: target}
		}

		fn = entry.entry
	}

	// Step 2: scope tear-down boundary.
	prev := f.GetState()

	var link *StateHandle

	if prev == "" || rootOf(prev) != root {
		if f.handle != nil {
			f.handle.Disconnect()
		}
	} else {
		link = f.handle
	}

	// Step 4: commit state.
	f.stateMu.Lock()
	f.state = target
	f.history.Push(target)
	if f.history.Len() > historyCapacity {
		f.history = f.history[f.history.Len()-historyCapacity:]
	}
	f.stateMu.Unlock()

	newHandle := newStateHandle(f, target, link)
	f.handle = newHandle

	// Step 5: entry. A panicking entry function is recovered and
	// converted to an error; state/handle stay committed and
	// inTransition is unconditionally cleared so the re-entrancy guard
	// can never wedge (see the package's open-question resolution in
	// DESIGN.md).
	f.inTransition = true
	entryErr := f.invokeEntry(fn, newHandle)
	f.inTransition = false

	if entryErr != nil {
		return &ErrEntryFunction{State: target, Err: entryErr}
	}

	// Step 6: all-state-event check.
	if f.allStateEvents != nil {
		for event := range f.allStateEvents.Iter() {
			if f.Listeners(event).Len() == 0 {
				return &ErrAllStateEventMissing{State: target, Event: event}
			}
		}
	}

	// Step 7: deferred emission.
	f.scheduleEmit(target)

	// Step 8: drain a re-entrant transition queued at step 1.
	if f.hasNext {
		next := f.nextState
		f.hasNext = false
		f.nextState = ""

		return f.transition(next)
	}

	return nil
}

func (f *FSM) invokeEntry(fn EntryFunc, h *StateHandle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn(h)
}

// scheduleEmit appends state to the pending-emission buffer. If the
// buffer was previously empty, a next-tick callback is scheduled to
// atomically swap it out and emit stateChanged once per queued name, in
// order — batching a synchronous chain of transitions into a single
// later turn so observers never see an intermediate state mid-chain.
func (f *FSM) scheduleEmit(state StateName) {
	wasEmpty := f.toEmit.Len() == 0
	f.toEmit.Push(state)

	if !wasEmpty {
		return
	}

	f.timers.NextTick(func() {
		f.loop.submit(func() {
			batch := f.toEmit
			f.toEmit = g.NewSlice[StateName]()

			for s := range batch.Iter() {
				f.Emit(StateChanged, s)
			}
		})
	})
}
