// internal/platform/ui/capture_presenter.go
package ui

import (
	"fmt"
	"io"
	"sync"
)

// CapturePresenter wraps another Presenter and retains one line per event
// it forwards. A quiet build drops its progress output on the floor; on
// failure the captured trail is replayed to the error stream so users
// need not re-run with --verbose to see what happened.
type CapturePresenter struct {
	mu    sync.Mutex
	inner Presenter
	lines []string
}

// NewCapturePresenter wraps inner with trail capture.
func NewCapturePresenter(inner Presenter) *CapturePresenter {
	return &CapturePresenter{inner: inner}
}

func (c *CapturePresenter) record(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

func (c *CapturePresenter) BuildStarted(totalTargets int, parallel bool) {
	c.record(fmt.Sprintf("build started: %d target(s), parallel=%v", totalTargets, parallel))
	c.inner.BuildStarted(totalTargets, parallel)
}

func (c *CapturePresenter) TargetStarted(name string) {
	c.record("target started: " + name)
	c.inner.TargetStarted(name)
}

func (c *CapturePresenter) TargetDeduped(name string) {
	c.record("target deduped: " + name)
	c.inner.TargetDeduped(name)
}

func (c *CapturePresenter) TargetCompiled(name string, success bool, diagnosticText string) {
	if success {
		c.record("target compiled: " + name)
	} else {
		line := "target failed: " + name
		if diagnosticText != "" {
			line += "\n" + diagnosticText
		}
		c.record(line)
	}
	c.inner.TargetCompiled(name, success, diagnosticText)
}

func (c *CapturePresenter) Info(msg string) {
	c.record(msg)
	c.inner.Info(msg)
}

func (c *CapturePresenter) Warning(msg string) {
	c.record("warning: " + msg)
	c.inner.Warning(msg)
}

func (c *CapturePresenter) Error(msg string) {
	c.record("error: " + msg)
	c.inner.Error(msg)
}

func (c *CapturePresenter) BuildFinished(succeeded, failed, deduped int, elapsed string) {
	c.record(fmt.Sprintf("build finished: %d succeeded, %d failed, %d deduped in %s",
		succeeded, failed, deduped, elapsed))
	c.inner.BuildFinished(succeeded, failed, deduped, elapsed)
}

func (c *CapturePresenter) Close() error { return c.inner.Close() }

// Replay writes the captured trail to w, one recorded event per line.
func (c *CapturePresenter) Replay(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		fmt.Fprintln(w, line)
	}
}
