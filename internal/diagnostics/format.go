// Package diagnostics implements the external diagnostic-formatting
// layer: turning the core's structured Diagnostic records into the text
// a terminal or log sink displays. It consumes domain.CompileResult; it
// is never consulted by the core itself.
package diagnostics

import (
	"fmt"
	"strings"

	"warp/internal/core/domain"
)

// Format renders one target's diagnostics, one line per diagnostic, each
// prefixed with "[target_name]". A diagnostic carrying a source location
// renders as "file(line+1, col+1): kind Txxxx: message"; one without a
// location omits the location clause.
func Format(targetName string, diags []domain.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, fmt.Sprintf("[%s] %s", targetName, d.String()))
	}
	return strings.Join(lines, "\n")
}

// FormatPlan renders every target's diagnostics across an entire build,
// grouped by target in plan (declaration) order.
func FormatPlan(results []domain.CompileResult) string {
	var groups []string
	for _, r := range results {
		if len(r.Diagnostics) == 0 {
			continue
		}
		groups = append(groups, Format(r.TargetName, r.Diagnostics))
	}
	return strings.Join(groups, "\n")
}
