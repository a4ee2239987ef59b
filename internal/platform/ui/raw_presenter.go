// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogFormat selects the raw presenter's line format.
type LogFormat string

const (
	LogFormatText LogFormat = "text" // logfmt: timestamp LEVEL message key=value ...
	LogFormatJSON LogFormat = "json"
)

// RawPresenter renders build events as one structured log line per event —
// the non-interactive fallback for CI, redirected output, or --verbose
// without a TTY.
type RawPresenter struct {
	format LogFormat
	mu     sync.Mutex
}

// NewRawPresenter creates a RawPresenter writing lines in format.
func NewRawPresenter(format LogFormat) *RawPresenter {
	return &RawPresenter{format: format}
}

func (r *RawPresenter) log(level, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := time.Now().UTC().Format(time.RFC3339)
	if r.format == LogFormatJSON {
		r.logJSON(ts, level, message, fields)
		return
	}
	r.logText(ts, level, message, fields)
}

func (r *RawPresenter) logText(ts, level, message string, fields map[string]interface{}) {
	parts := []string{ts, fmt.Sprintf("%-5s", level), message}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	w := os.Stdout
	if level == "ERROR" || level == "WARN" {
		w = os.Stderr
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

func (r *RawPresenter) logJSON(ts, level, message string, fields map[string]interface{}) {
	record := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		record[k] = v
	}
	record["timestamp"] = ts
	record["level"] = level
	record["message"] = message

	encoded, err := json.Marshal(record)
	w := os.Stdout
	if level == "ERROR" || level == "WARN" {
		w = os.Stderr
	}
	if err != nil {
		fmt.Fprintf(w, `{"level":"ERROR","message":"failed to encode log record: %v"}`+"\n", err)
		return
	}
	fmt.Fprintln(w, string(encoded))
}

func (r *RawPresenter) BuildStarted(totalTargets int, parallel bool) {
	r.log("INFO", "build started", map[string]interface{}{"targets": totalTargets, "parallel": parallel})
}

func (r *RawPresenter) TargetStarted(name string) {
	r.log("INFO", "target started", map[string]interface{}{"target": name})
}

func (r *RawPresenter) TargetDeduped(name string) {
	r.log("INFO", "target deduped", map[string]interface{}{"target": name})
}

func (r *RawPresenter) TargetCompiled(name string, success bool, diagnosticText string) {
	fields := map[string]interface{}{"target": name, "success": success}
	level := "INFO"
	if !success {
		level = "ERROR"
		fields["diagnostics"] = diagnosticText
	}
	r.log(level, "target compiled", fields)
}

func (r *RawPresenter) Info(msg string)    { r.log("INFO", msg, nil) }
func (r *RawPresenter) Warning(msg string) { r.log("WARN", msg, nil) }
func (r *RawPresenter) Error(msg string)   { r.log("ERROR", msg, nil) }

func (r *RawPresenter) BuildFinished(succeeded, failed, deduped int, elapsed string) {
	r.log("INFO", "build finished", map[string]interface{}{
		"succeeded": succeeded, "failed": failed, "deduped": deduped, "elapsed": elapsed,
	})
}

func (r *RawPresenter) Close() error { return nil }
