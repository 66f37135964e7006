package mooremachine

// NodeCallback is the conventional node-style completion callback: called
// exactly once, with a non-nil err on failure or the operation's results
// on success.
type NodeCallback func(err error, results ...any)

// NodeFunc is an asynchronous operation taking a single completion
// callback. Any arguments the operation needs are captured by the
// closure a caller passes to Async — the idiomatic Go rendering of "f's
// receiver is the adapter" from the spec, since Go closures replace
// implicit receiver binding.
type NodeFunc func(cb NodeCallback)

// AsyncAdapter wraps a NodeFunc into an Emitter exposing Run, so that a
// conventional callback-style async operation can be used as any other
// emitter with handle.On — specifically as a transition trigger. Nothing
// about it is specific to any particular runtime's callback convention
// beyond "the completion callback is (err, ...results)".
type AsyncAdapter struct {
	Emitter
	fn NodeFunc
}

// Async returns a fresh AsyncAdapter wrapping fn. Run() has not been
// called yet; no events have fired.
func Async(fn NodeFunc) *AsyncAdapter {
	return &AsyncAdapter{Emitter: NewEventEmitter(), fn: fn}
}

// Run invokes the wrapped function. When its callback fires with a
// non-nil error, "error" is emitted with that error; otherwise "return"
// is emitted with the callback's remaining arguments. The adapter does
// not retry and does not guard against the callback being invoked more
// than once — calling it twice emits twice, exactly mirroring whatever
// the wrapped function actually does.
func (a *AsyncAdapter) Run() {
	a.fn(func(err error, results ...any) {
		if err != nil {
			a.Emit("error", err)
			return
		}

		a.Emit("return", results...)
	})
}
