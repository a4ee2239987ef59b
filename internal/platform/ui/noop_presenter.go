// internal/platform/ui/noop_presenter.go
package ui

// NoopPresenter discards every event. Used for --quiet and --json, where
// the CLI layer renders its own single JSON object instead.
type NoopPresenter struct{}

// NewNoopPresenter creates a Presenter that produces no output.
func NewNoopPresenter() *NoopPresenter { return &NoopPresenter{} }

func (n *NoopPresenter) BuildStarted(totalTargets int, parallel bool) {}
func (n *NoopPresenter) TargetStarted(name string) {}
func (n *NoopPresenter) TargetDeduped(name string) {}
func (n *NoopPresenter) TargetCompiled(name string, success bool, text string) {}
func (n *NoopPresenter) Info(msg string) {}
func (n *NoopPresenter) Warning(msg string) {}
func (n *NoopPresenter) Error(msg string) {}
func (n *NoopPresenter) BuildFinished(succeeded, failed, deduped int, elapsed string) {}
func (n *NoopPresenter) Close() error { return nil }
