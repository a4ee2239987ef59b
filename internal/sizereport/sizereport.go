// Package sizereport implements the `--stats` artifact size report:
// purely additive, computed from the CompileResult list the core already
// returns — it never touches the core itself.
package sizereport

import (
	"os"
	"path/filepath"
	"sort"

	"warp/internal/core/domain"
)

// TargetSize is one target's output-directory footprint.
type TargetSize struct {
	TargetName  string `json:"target"`
	TotalBytes  int64  `json:"totalBytes"`
	LargestFile string `json:"largestFile,omitempty"`
	LargestSize int64  `json:"largestSize"`
}

// Report is the `--stats` payload: one TargetSize per successfully built
// target, in the same order as the CompileResult list.
type Report struct {
	Targets []TargetSize `json:"targets"`
}

// Compute walks each successful result's OutDir and totals regular-file
// sizes, tracking the single largest file. A target whose compile failed
// is skipped — its out_dir may be empty or stale.
func Compute(results []domain.CompileResult) (Report, error) {
	var report Report
	for _, r := range results {
		if !r.Success {
			continue
		}
		ts, err := sizeOf(r.TargetName, r.OutDir)
		if err != nil {
			return Report{}, err
		}
		report.Targets = append(report.Targets, ts)
	}
	return report, nil
}

func sizeOf(targetName, outDir string) (TargetSize, error) {
	ts := TargetSize{TargetName: targetName}
	err := filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ts.TotalBytes += info.Size()
		if info.Size() > ts.LargestSize {
			ts.LargestSize = info.Size()
			ts.LargestFile = path
		}
		return nil
	})
	if err != nil {
		return TargetSize{}, err
	}
	return ts, nil
}

// SortedByTotal returns a copy of targets sorted by descending total size,
// for human-readable --stats display (largest target first).
func SortedByTotal(targets []TargetSize) []TargetSize {
	out := make([]TargetSize, len(targets))
	copy(out, targets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalBytes > out[j].TotalBytes })
	return out
}
