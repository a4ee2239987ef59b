// Package ui implements the build-progress presenter: a pterm-backed
// terminal renderer, a plain-text fallback, and a no-op variant for
// --quiet/--json, all driven by the core's ports.Notifier events.
package ui

// Presenter renders one build's lifecycle to the terminal. NewNotifier
// adapts it to ports.Notifier so the core never depends on this package.
type Presenter interface {
	// BuildStarted announces the plan: how many targets, which mode.
	BuildStarted(totalTargets int, parallel bool)

	// TargetStarted notifies that a target's compile has begun.
	TargetStarted(name string)

	// TargetDeduped notifies that a target's output is being copied from
	// a compile-signature sibling rather than compiled.
	TargetDeduped(name string)

	// TargetCompiled notifies that a target finished compiling.
	TargetCompiled(name string, success bool, diagnosticText string)

	// Info, Warning, Error print out-of-band messages (config discovery,
	// cleanup, declaration copy fallbacks).
	Info(msg string)
	Warning(msg string)
	Error(msg string)

	// BuildFinished renders the final summary line.
	BuildFinished(succeeded, failed, deduped int, elapsed string)

	// Close releases any resources (spinners, live renderers).
	Close() error
}
