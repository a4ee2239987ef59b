// Package testutil holds small fakes of the core's external collaborator
// ports (ports.ConfigParser, ports.Notifier), shared across
// internal/core/usecases tests so each test file doesn't redeclare its own
// copy of the same bookkeeping structs.
package testutil

import (
	"fmt"
	"sync"

	"warp/internal/core/domain"
	"warp/internal/core/ports"
)

// FakeConfigParser resolves a fixed table of targets by name, set up by the
// test, instead of reading any file from disk.
type FakeConfigParser struct {
	mu      sync.Mutex
	targets map[string]domain.ParsedTarget
	errs    map[string]error
}

// NewFakeConfigParser creates an empty FakeConfigParser.
func NewFakeConfigParser() *FakeConfigParser {
	return &FakeConfigParser{
		targets: make(map[string]domain.ParsedTarget),
		errs:    make(map[string]error),
	}
}

// Add registers the ParsedTarget Parse should return for target.Name.
func (f *FakeConfigParser) Add(pt domain.ParsedTarget) *FakeConfigParser {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets[pt.Name] = pt
	return f
}

// Fail makes Parse return err for the named target.
func (f *FakeConfigParser) Fail(name string, err error) *FakeConfigParser {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
	return f
}

// Parse implements ports.ConfigParser.
func (f *FakeConfigParser) Parse(target domain.Target) (domain.ParsedTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[target.Name]; ok {
		return domain.ParsedTarget{}, err
	}
	pt, ok := f.targets[target.Name]
	if !ok {
		return domain.ParsedTarget{}, fmt.Errorf("no fixture registered for target %q", target.Name)
	}
	return pt, nil
}

// RecordingNotifier collects every Event it receives, in arrival order, for
// tests asserting on build lifecycle ordering.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []ports.Event
}

// NewRecordingNotifier creates an empty RecordingNotifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify implements ports.Notifier.
func (r *RecordingNotifier) Notify(event ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of every event recorded so far.
func (r *RecordingNotifier) Events() []ports.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns just the EventType sequence, convenient for order assertions.
func (r *RecordingNotifier) Types() []ports.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
