package mooremachine

// runLoop gives every FSM a single owning goroutine, so the transition
// engine (inTransition, nextState, toEmit) never needs its own locking —
// reconciling the spec's single-threaded-cooperative-scheduler assumption
// with Go's genuinely concurrent timers and emitters. Modeled on
// librefsm's Machine.eventLoop/events-channel pattern.
//
// A StateHandle's registered listeners and timers always dispatch through
// submit, regardless of which goroutine the host emitter or clock fires
// them on. transition() itself is only ever called directly, as a plain
// function call, from code that is already guaranteed to be running on
// this goroutine: the Builder's initial construction, and any fn passed
// to submit while it executes.
type runLoop struct {
	work chan func()
	done chan struct{}
}

func newRunLoop() *runLoop {
	return &runLoop{
		work: make(chan func(), 64),
		done: make(chan struct{}),
	}
}

func (l *runLoop) run() {
	for {
		select {
		case fn := <-l.work:
			fn()
		case <-l.done:
			return
		}
	}
}

// submit enqueues fn to run on the loop goroutine and returns immediately
// without waiting for it to execute.
func (l *runLoop) submit(fn func()) {
	select {
	case l.work <- fn:
	case <-l.done:
	}
}

// submitWait enqueues fn and blocks until it has run. Used by the public
// FSM.GotoState escape hatch, which unlike handle.GotoState may be called
// from a foreign goroutine that needs the transition's error back.
func (l *runLoop) submitWait(fn func() error) error {
	result := make(chan error, 1)

	l.submit(func() { result <- fn() })

	select {
	case err := <-result:
		return err
	case <-l.done:
		return &ErrArgumentType{Argument: "fsm", Reason: "run loop stopped"}
	}
}

func (l *runLoop) stop() {
	close(l.done)
}
