package mooremachine

import (
	"time"

	"github.com/enetx/g"
)

// listenerReg records one (emitter, event, handler) triple registered
// through a StateHandle, so Disconnect can remove exactly what it added.
type listenerReg struct {
	emitter Emitter
	event   EventName
	handler HandlerFunc
}

// StateHandle is the per-state scope: it owns every listener and timer
// registered while its state is active, is the only lawful channel for
// gotoState, and invalidates itself the moment it is used to cause a
// transition. Two states only: valid (initial) and invalid (terminal);
// gotoState is the sole transition, and tear-down (Disconnect) is
// idempotent in either state.
type StateHandle struct {
	fsm   *FSM
	state StateName
	valid bool

	// link chains back to the previous state's handle when a transition
	// stays within the same root (entering/leaving/crossing sub-states),
	// so a later root-boundary transition tears down the whole chain.
	link *StateHandle

	listeners  g.Slice[listenerReg]
	timeouts   g.Slice[Canceller]
	intervals  g.Slice[Canceller]
	immediates g.Slice[Canceller]

	validTransitions g.Set[StateName]

	// nextState is diagnostic only: the state this handle was used to
	// transition to, retained for ErrHandleAlreadyUsed's message.
	nextState StateName
}

func newStateHandle(f *FSM, state StateName, link *StateHandle) *StateHandle {
	return &StateHandle{fsm: f, state: state, valid: true, link: link}
}

// FSM returns the machine this handle scopes a state of, so an entry
// function can reach FSM().Data / FSM().Meta or call FSM().GetState()
// without the machine having to be captured separately by the closure
// that registered the entry function.
func (h *StateHandle) FSM() *FSM {
	return h.fsm
}

// On subscribes fn to emitter's event for the lifetime of this handle's
// state. The dispatch is routed onto the FSM's run loop, so fn (and any
// gotoState it performs) always executes on the FSM's single owning
// goroutine regardless of which goroutine the emitter itself fires on.
func (h *StateHandle) On(emitter Emitter, event EventName, fn HandlerFunc) {
	wrapped := func(args ...any) {
		h.fsm.loop.submit(func() { fn(args...) })
	}

	emitter.On(event, wrapped)
	h.listeners.Push(listenerReg{emitter: emitter, event: event, handler: wrapped})
}

// Timeout schedules fn to run once after d elapses, cancelled
// automatically if this handle is torn down first.
func (h *StateHandle) Timeout(d time.Duration, fn func()) {
	c := h.fsm.timers.AfterFunc(d, func() {
		h.fsm.loop.submit(fn)
	})
	h.timeouts.Push(c)
}

// Interval schedules fn to run every d, cancelled automatically if this
// handle is torn down first.
func (h *StateHandle) Interval(d time.Duration, fn func()) {
	c := h.fsm.timers.TickerFunc(d, func() {
		h.fsm.loop.submit(fn)
	})
	h.intervals.Push(c)
}

// Immediate schedules fn to run on the next tick, cancelled automatically
// if this handle is torn down first.
func (h *StateHandle) Immediate(fn func()) {
	c := h.fsm.timers.NextTick(func() {
		h.fsm.loop.submit(fn)
	})
	h.immediates.Push(c)
}

// Callback returns a function that, once called, forwards its arguments
// to fn iff this handle is still valid; otherwise it is a silent no-op.
// No tear-down bookkeeping is needed for it — the validity guard is
// lexical — but dispatch is still routed onto the run loop so fn (which
// may itself call gotoState) only ever runs on the FSM's owning
// goroutine, even when the returned function is handed to code running
// on some other goroutine entirely.
func (h *StateHandle) Callback(fn func(args ...any)) func(args ...any) {
	return func(args ...any) {
		h.fsm.loop.submit(func() {
			if !h.valid {
				return
			}

			fn(args...)
		})
	}
}

// ValidTransitions restricts the states this handle may gotoState to.
// Without a call to ValidTransitions, any known state is a legal target.
func (h *StateHandle) ValidTransitions(states ...StateName) {
	set := g.NewSet[StateName]()
	for _, s := range states {
		set.Insert(s)
	}

	h.validTransitions = set
}

// GotoState is the sanctioned way to leave the state this handle scopes.
// It fails if the handle was already used; a configured ValidTransitions
// list is enforced centrally by transition() itself (so the gate also
// applies to FSM.GotoState, the public escape hatch that does not go
// through a handle at all), not here. Otherwise it invalidates the
// handle and delegates to the FSM's internal transition routine.
func (h *StateHandle) GotoState(target StateName) error {
	if !h.valid {
		return &ErrHandleAlreadyUsed{
			Current:   h.fsm.GetState(),
			Attempted: target,
			Used:      h.nextState,
		}
	}

	h.valid = false
	h.nextState = target

	return h.fsm.transition(target)
}

// Disconnect removes every listener this handle registered from its
// emitter, cancels every timer of every kind, clears the collections,
// then cascades to the linked handle (if any). It is idempotent: calling
// it more than once, or on an already-torn-down handle, does nothing
// further.
func (h *StateHandle) Disconnect() {
	for reg := range h.listeners.Iter() {
		reg.emitter.RemoveListener(reg.event, reg.handler)
	}
	h.listeners = nil

	for c := range h.timeouts.Iter() {
		c.Cancel()
	}
	h.timeouts = nil

	for c := range h.intervals.Iter() {
		c.Cancel()
	}
	h.intervals = nil

	for c := range h.immediates.Iter() {
		c.Cancel()
	}
	h.immediates = nil

	if h.link != nil {
		h.link.Disconnect()
		h.link = nil
	}
}
