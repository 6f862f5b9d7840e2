package gr2

// Logger receives low-volume trace lines from a load: one once the
// container pipeline has built the arena (sector count and arena
// size), and one once the element parse is done (element count).
// Diagnostic messages are not part of the load contract; a caller that
// wants them sets LoadOptions.Logger, and gets nothing on
// stdout/stderr otherwise.
type Logger interface {
	Debugf(format string, args ...any)
}

// noopLogger discards every line; it is the default when
// LoadOptions.Logger is nil.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// funcLogger adapts a plain function to the Logger interface, for
// callers that just want to pass a closure.
type funcLogger func(string, ...any)

func (f funcLogger) Debugf(format string, args ...any) { f(format, args...) }

// LoggerFunc wraps fn as a Logger.
func LoggerFunc(fn func(string, ...any)) Logger { return funcLogger(fn) }
