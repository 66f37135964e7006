package mooremachine

// Logger is a minimal logging interface, compatible with the standard
// library's *log.Logger and with most structured loggers that expose a
// Printf method.
type Logger interface {
	Printf(format string, args ...any)
}

// AttachLogger subscribes l to f's stateChanged event, logging every
// transition f makes from here on. Adapted from the teacher's
// attachLogger example helper; this port only has a single stateChanged
// event to log; there is no separate enter/exit pair to report.
func AttachLogger(f *FSM, l Logger) {
	f.On(StateChanged, func(args ...any) {
		var state StateName
		if len(args) > 0 {
			if s, ok := args[0].(StateName); ok {
				state = s
			}
		}

		l.Printf("[FSM] -> %s", string(state))
	})
}
