// internal/platform/ui/notifier.go
package ui

import (
	"warp/internal/core/ports"
)

// notifierAdapter implements ports.Notifier by forwarding each build event
// to a Presenter — the core stays ignorant of pterm/plain-text/no-op
// rendering, exactly as ports.Notifier's doc comment describes.
type notifierAdapter struct {
	presenter Presenter
}

// NewNotifier adapts presenter into a ports.Notifier the orchestrator can
// be handed directly.
func NewNotifier(presenter Presenter) ports.Notifier {
	return &notifierAdapter{presenter: presenter}
}

func (n *notifierAdapter) Notify(event ports.Event) {
	switch event.Type {
	case ports.EventBuildStarted, ports.EventBuildCompleted:
		// The CLI layer calls Presenter.BuildStarted/BuildFinished itself
		// with richer arguments (counts, mode, elapsed) than these events
		// carry; forwarding them here would double-print.
	case ports.EventTargetStarted:
		n.presenter.TargetStarted(event.Target)
	case ports.EventTargetDeduped:
		n.presenter.TargetDeduped(event.Target)
	case ports.EventTargetCompiled:
		n.presenter.TargetCompiled(event.Target, true, "")
	case ports.EventTargetFailed:
		n.presenter.TargetCompiled(event.Target, false, event.Message)
	}
}
