package mooremachine_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/TritonDataCenter/node-mooremachine"
)

func TestAsyncAdapterEmitsError(t *testing.T) {
	boom := errors.New("boom")

	a := Async(func(cb NodeCallback) {
		cb(boom)
	})

	var gotErr error
	var returnFired bool

	a.On("error", func(args ...any) {
		gotErr, _ = args[0].(error)
	})
	a.On("return", func(args ...any) { returnFired = true })

	a.Run()

	assertTrue(t, gotErr == boom)
	assertFalse(t, returnFired)
}

func TestAsyncAdapterEmitsReturn(t *testing.T) {
	a := Async(func(cb NodeCallback) {
		cb(nil, "rows", 42)
	})

	var gotArgs []any
	var errorFired bool

	a.On("error", func(args ...any) { errorFired = true })
	a.On("return", func(args ...any) { gotArgs = args })

	a.Run()

	assertFalse(t, errorFired)
	assertEqual(t, len(gotArgs), 2)
	assertEqual(t, gotArgs[0].(string), "rows")
	assertEqual(t, gotArgs[1].(int), 42)
}

// TestAsyncAdapterAsTransitionTrigger exercises the adapter the way
// spec.md describes it being used: as an ordinary emitter a state wires
// up via handle.On, driving a transition off its "return" event.
func TestAsyncAdapterAsTransitionTrigger(t *testing.T) {
	fetch := Async(func(cb NodeCallback) {
		cb(nil, "result")
	})

	b := NewBuilder().
		State("loading", func(h *StateHandle) error {
			h.On(fetch, "return", func(args ...any) {
				_ = h.GotoState("loaded")
			})

			fetch.Run()

			return nil
		}).
		State("loaded", func(h *StateHandle) error { return nil })

	f, err := b.Build("loading")
	assertNoError(t, err)

	waitForState(t, f, "loaded", 2*time.Second)
}
