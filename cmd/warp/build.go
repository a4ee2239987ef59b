package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"warp/internal/adapters/erasure"
	"warp/internal/adapters/tsconfig"
	"warp/internal/core/domain"
	"warp/internal/core/usecases"
	"warp/internal/diagnostics"
	"warp/internal/manifest"
	"warp/internal/platform/config"
	platerrors "warp/internal/platform/errors"
	"warp/internal/platform/logx"
	"warp/internal/platform/polyfill"
	"warp/internal/platform/ui"
	"warp/internal/platform/workerpool"
	"warp/internal/sizereport"
)

// jsonResult is the single object --json prints: --json implies --quiet
// and emits this one object instead of the normal progress output. RunID
// matches the "run" field on the build's log lines, so a --json consumer
// can correlate the object with captured stderr output.
type jsonResult struct {
	RunID       string             `json:"runId"`
	Success     bool               `json:"success"`
	TotalTimeMS int64              `json:"totalTimeMs"`
	Targets     []jsonTarget       `json:"targets"`
	SizeReport  *sizereport.Report `json:"sizeReport,omitempty"`
}

type jsonTarget struct {
	Name          string `json:"name"`
	Condition     string `json:"condition"`
	Success       bool   `json:"success"`
	CompileTimeMS int64  `json:"compileTimeMs"`
	Deduped       bool   `json:"deduped"`
	OutDir        string `json:"outDir"`
}

// runBuild implements the `build` command: load and validate config, run
// the orchestrator once, rewrite the package manifest, optionally report
// size metrics, and render results.
func runBuild(flags *config.Flags) int {
	ctx, cancel := rootContext()
	defer cancel()

	cfg, cfgPath, err := config.Load(flags.ConfigPath)
	if err != nil {
		return reportFatal(flags, err)
	}

	packageDir, err := filepath.Abs(filepath.Dir(cfgPath))
	if err != nil {
		return reportFatal(flags, err)
	}

	targets := config.ToTargets(cfg)
	// One id labels this whole invocation: the orchestrator scopes its log
	// lines with it, and --json consumers read it back as runId.
	runID := uuid.NewString()
	logger := logx.New()
	// The capture wrapper retains the progress trail even when the inner
	// presenter is the quiet/--json no-op, so a failed build can replay it.
	presenter := ui.NewCapturePresenter(presenterFor(flags))
	notifier := ui.NewNotifier(presenter)
	defer presenter.Close()

	orch := &usecases.Orchestrator{
		ConfigParser: tsconfig.New(packageDir),
		Compiler:     erasure.New(),
		Notifier:     notifier,
		Logger:       logger,
		PackageRoot:  packageDir,
		RunID:        runID,
	}
	if flags.Parallel {
		exe, exeErr := os.Executable()
		if exeErr == nil {
			orch.SpawnWorker = workerpool.NewProcessSpawner(exe, []string{"--worker"})
		} else {
			logger.Warn("could not resolve own executable path, falling back to sequential", "error", exeErr.Error())
		}
	}
	orch.WithOptions(usecases.BuildOptions{
		Parallel:    flags.Parallel && orch.SpawnWorker != nil,
		NoClean:     flags.NoClean,
		OnlyTargets: flags.Targets,
	})

	if flags.DryRun {
		return runDryRun(packageDir, targets, presenter)
	}

	presenter.BuildStarted(len(targets), flags.Parallel && orch.SpawnWorker != nil)

	start := time.Now()
	results, err := orch.Build(ctx, targets)
	elapsed := time.Since(start)
	if err != nil {
		if flags.Quiet {
			presenter.Replay(os.Stderr)
		}
		return reportFatal(flags, err)
	}

	parsed, parseErr := parseForManifest(packageDir, targets)
	resultByName := make(map[string]domain.CompileResult, len(results))
	for _, r := range results {
		resultByName[r.TargetName] = r
	}

	distMissing := false
	if parseErr == nil {
		rewriter := manifest.New(packageDir)
		if err := rewriter.RewriteShims(parsed); err != nil {
			presenter.Warning("module shim write failed: " + err.Error())
		}
		if err := rewriter.RewriteExports(cfg.Exports, parsed, resultByName); err != nil {
			// A referenced artifact missing on disk fails the build as a
			// whole, not just the manifest step.
			if platerrors.IsKind(err, platerrors.DistMissing) {
				distMissing = true
				presenter.Error("manifest rewrite: " + err.Error())
			} else {
				presenter.Warning("manifest rewrite failed: " + err.Error())
			}
		}
	}

	succeeded, failed, deduped := tally(results)
	presenter.BuildFinished(succeeded, failed, deduped, elapsed.String())

	var report *sizereport.Report
	if flags.Stats {
		r, err := sizereport.Compute(results)
		if err != nil {
			presenter.Warning("size report failed: " + err.Error())
		} else {
			report = &r
			renderStats(flags, presenter, r)
		}
	}

	success := domain.BuildSucceeded(results) && !distMissing
	if flags.JSON {
		emitJSON(runID, targets, results, elapsed, success, report)
	}
	if !success {
		if flags.Quiet {
			// Messages captured while quiet are replayed to the error
			// stream so the failure can be diagnosed without re-running
			// under --verbose. Stdout stays clean for the --json object.
			presenter.Replay(os.Stderr)
		} else {
			replayDiagnostics(presenter, results)
		}
	}

	if success {
		return 0
	}
	return 1
}

func parseForManifest(packageDir string, targets []domain.Target) ([]domain.ParsedTarget, error) {
	parser := tsconfig.New(packageDir)
	out := make([]domain.ParsedTarget, 0, len(targets))
	for _, t := range targets {
		pt, err := parser.Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}

func runDryRun(packageDir string, targets []domain.Target, presenter ui.Presenter) int {
	parsed, err := parseForManifest(packageDir, targets)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return exitCodeFor(err)
	}
	if err := domain.ValidatePlan(parsed); err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return 1
	}
	overlays := make(map[string]domain.Overlay, len(parsed))
	for _, pt := range parsed {
		overlays[pt.Name] = polyfill.Discover(pt.RootFiles, pt.PolyfillSuffix)
	}
	groups := usecases.Plan(parsed, overlays)
	presenter.Info(fmt.Sprintf("%d target(s), %d unique compile group(s)", len(parsed), len(groups)))
	for _, g := range groups {
		line := g.Primary.Name
		for _, c := range g.Copies {
			line += " + " + c.Name + " (deduped)"
		}
		presenter.Info("  " + line)
	}
	return 0
}

func tally(results []domain.CompileResult) (succeeded, failed, deduped int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
		if r.Deduped {
			deduped++
		}
	}
	return
}

func renderStats(flags *config.Flags, presenter ui.Presenter, report sizereport.Report) {
	if flags.JSON {
		return // folded into the single --json object instead
	}
	for _, ts := range sizereport.SortedByTotal(report.Targets) {
		presenter.Info(fmt.Sprintf("%s: %d bytes (largest: %s, %d bytes)", ts.TargetName, ts.TotalBytes, ts.LargestFile, ts.LargestSize))
	}
}

func replayDiagnostics(presenter ui.Presenter, results []domain.CompileResult) {
	text := diagnostics.FormatPlan(results)
	if text != "" {
		presenter.Error(text)
	}
}

func emitJSON(runID string, targets []domain.Target, results []domain.CompileResult, elapsed time.Duration, success bool, report *sizereport.Report) {
	conditionByName := make(map[string]string, len(targets))
	for _, t := range targets {
		conditionByName[t.Name] = t.Condition
	}
	jr := jsonResult{
		RunID:       runID,
		Success:     success,
		TotalTimeMS: elapsed.Milliseconds(),
		SizeReport:  report,
	}
	for _, r := range results {
		jr.Targets = append(jr.Targets, jsonTarget{
			Name:          r.TargetName,
			Condition:     conditionByName[r.TargetName],
			Success:       r.Success,
			CompileTimeMS: r.CompileTime.Milliseconds(),
			Deduped:       r.Deduped,
			OutDir:        r.OutDir,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(jr)
}

func presenterFor(flags *config.Flags) ui.Presenter {
	if flags.Quiet {
		return ui.NewNoopPresenter()
	}
	if flags.JSON {
		return ui.NewNoopPresenter()
	}
	if flags.Verbose || !isTerminal() {
		return ui.NewRawPresenter(ui.LogFormatText)
	}
	return ui.NewPTermPresenter()
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// reportFatal prints a typed error that ended the build without results
// (validation/config/tsconfig, or an error returned by the orchestrator)
// and returns the matching exit code for it. It prints only the error; when
// the orchestrator fails in a quiet build, runBuild replays the captured
// trail to stderr before calling it.
func reportFatal(flags *config.Flags, err error) int {
	if flags.JSON {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]any{"success": false, "error": err.Error()})
		return exitCodeFor(err)
	}
	fmt.Fprintln(os.Stderr, "warp:", err)
	if kind, ok := platerrors.KindOf(err); ok {
		fmt.Fprintln(os.Stderr, "  kind:", kind)
	}
	return exitCodeFor(err)
}

// rootContext cancels on SIGINT/SIGTERM so a build or watch loop in
// progress can stop dispatching new work.
func rootContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
