package mooremachine

import "github.com/enetx/g"

// Builder composes a state table before a running FSM is built from it —
// the Go rendering of "a subclass declares an entry function per state,
// and may call allStateEvent before delegating to the core constructor."
// Grounded on librefsm's Definition/Build() split: declaring the state
// graph is kept separate from instantiating the running machine.
type Builder struct {
	states         map[StateName]*stateEntry
	allStateEvents g.Set[EventName]
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		states:         make(map[StateName]*stateEntry),
		allStateEvents: g.NewSet[EventName](),
	}
}

func (b *Builder) entry(name StateName) *stateEntry {
	e, ok := b.states[name]
	if !ok {
		e = &stateEntry{}
		b.states[name] = e
	}

	return e
}

// State registers fn as the entry function for the root state name.
func (b *Builder) State(name StateName, fn EntryFunc) *Builder {
	b.entry(name).entry = fn
	return b
}

// SubState registers fn as the entry function for the sub-state
// "parent.leaf". Depth is exactly one: leaf must not itself contain a dot.
func (b *Builder) SubState(parent, leaf StateName, fn EntryFunc) *Builder {
	e := b.entry(parent)
	if e.subs == nil {
		e.subs = make(map[StateName]EntryFunc)
	}

	e.subs[leaf] = fn

	return b
}

// AllStateEvent appends name to the set of events every state must
// register a listener for; the core enforces this immediately after each
// transition's entry function returns.
func (b *Builder) AllStateEvent(name EventName) *Builder {
	b.allStateEvents.Insert(name)
	return b
}

// Option configures an FSM at Build time.
type Option func(*FSM)

// WithEmitter supplies the Emitter the FSM uses for its own events
// (stateChanged and anything else it Emits), in place of the default
// EventEmitter.
func WithEmitter(e Emitter) Option {
	return func(f *FSM) { f.Emitter = e }
}

// WithTimerSource supplies the TimerSource StateHandle timeouts,
// intervals, and immediates schedule against, in place of the default
// ClockTimerSource wrapping the real wall clock. Tests pass one built on
// clock.NewMock() for deterministic timer behavior.
func WithTimerSource(t TimerSource) Option {
	return func(f *FSM) { f.timers = t }
}

// Build constructs an FSM from the Builder's state table and performs the
// initial transition to initial, exactly as the spec's construct(initial)
// operation does: validate, initialize empty history/handle/emission
// buffers and the allStateEvents carried from the Builder, then invoke
// the internal transition. A failure from that initial transition is
// returned and no usable FSM is produced.
func (b *Builder) Build(initial StateName, opts ...Option) (*FSM, error) {
	f := &FSM{
		Emitter:        NewEventEmitter(),
		states:         b.states,
		allStateEvents: b.allStateEvents,
		timers:         NewClockTimerSource(nil),
		Data:           g.NewMapSafe[g.String, any](),
		Meta:           g.NewMapSafe[g.String, any](),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.loop = newRunLoop()
	go f.loop.run()

	if err := f.loop.submitWait(func() error { return f.transition(initial) }); err != nil {
		f.loop.stop()
		return nil, err
	}

	return f, nil
}
