package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"warp/internal/core/domain"
	"warp/internal/core/ports"
	"warp/internal/diagnostics"
	"warp/internal/platform/cache"
	"warp/internal/platform/compile"
	platerrors "warp/internal/platform/errors"
	"warp/internal/platform/logx"
	"warp/internal/platform/polyfill"
	"warp/internal/platform/workerpool"
)

// declarationExtensions are the suffixes the deferred declaration copy
// looks for when mirroring a type-check primary's emitted declarations
// onto a secondary that skipped both type-checking and emit.
var declarationExtensions = []string{".d.ts", ".d.mts"}

// Orchestrator is the top-level entry point: it cleans output
// directories, discovers polyfill overlays, plans dedup groups, runs the
// compiles (sequentially in one process, or in parallel over a
// WorkerPool), and copies declarations and dedup output trees.
type Orchestrator struct {
	ConfigParser ports.ConfigParser
	Compiler     ports.Compiler
	Notifier     ports.Notifier
	Logger       logx.Logger

	// PackageRoot is the absolute directory of the package being built;
	// it rides along in every worker compile request.
	PackageRoot string

	// RunID labels one Build invocation: it scopes every log line the
	// build emits and surfaces in the CLI's --json object. Generated when
	// left empty, so watch-mode rebuilds each get their own id.
	RunID string

	// SpawnWorker launches one worker subprocess for parallel mode. A nil
	// value means parallel mode is unavailable (the caller must fall back
	// to sequential).
	SpawnWorker workerpool.SpawnFunc

	CacheSize       int
	CopyConcurrency int
	NumCPU          func() int

	onlyTargets []string
	noClean     bool
	parallel    bool

	// runLog is the run-scoped logger for the Build in progress.
	runLog logx.Logger
}

// BuildOptions controls one Build invocation (the CLI flag surface maps
// onto these).
type BuildOptions struct {
	Parallel bool
	NoClean  bool
	// OnlyTargets restricts the build to these target names (--target,
	// repeatable); empty means all targets in declaration order.
	OnlyTargets []string
}

func (o *Orchestrator) logger() logx.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logx.New()
}

// log returns the run-scoped logger once Build has stamped one, falling
// back to the bare configured logger outside a build.
func (o *Orchestrator) log() logx.Logger {
	if o.runLog != nil {
		return o.runLog
	}
	return o.logger()
}

func (o *Orchestrator) numCPU() int {
	if o.NumCPU != nil {
		return o.NumCPU()
	}
	return runtime.NumCPU()
}

// Build runs the full pipeline for targets and returns results in the
// same declaration order as targets.
func (o *Orchestrator) Build(ctx context.Context, targets []domain.Target) ([]domain.CompileResult, error) {
	selected := filterTargets(targets, o.bySelection())

	parsed := make([]domain.ParsedTarget, 0, len(selected))
	for _, t := range selected {
		pt, err := o.ConfigParser.Parse(t)
		if err != nil {
			return nil, platerrors.Wrapped(platerrors.TSConfigError, fmt.Sprintf("target %q: compiler configuration", t.Name), err)
		}
		parsed = append(parsed, pt)
	}

	if err := domain.ValidatePlan(parsed); err != nil {
		return nil, platerrors.Wrapped(platerrors.ValidationErr, "build plan validation", err)
	}

	if len(parsed) == 0 {
		return nil, nil
	}

	runID := o.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	o.runLog = o.logger().With("run", runID)
	o.runLog.Debug("build starting", "targets", len(parsed))

	o.notifyEvent(ports.EventBuildStarted, "", fmt.Sprintf("building %d target(s)", len(parsed)))

	if !o.anyNoClean() {
		if err := o.clean(parsed); err != nil {
			return nil, platerrors.Wrapped(platerrors.ValidationErr, "cleaning output directories", err)
		}
	}

	overlays, err := o.discoverOverlays(parsed)
	if err != nil {
		return nil, err
	}

	groups := Plan(parsed, overlays)
	siGroups := SourceIdentityGroups(parsed, overlays)
	idx := buildSourceIdentityIndex(siGroups)

	byName := make(map[string]domain.ParsedTarget, len(parsed))
	for _, pt := range parsed {
		byName[pt.Name] = pt
	}

	var results map[string]domain.CompileResult

	if o.parallelRequested() && o.SpawnWorker != nil {
		results, err = o.runParallel(ctx, groups, idx, overlays, byName)
	} else {
		results, err = o.runSequential(groups, idx, overlays)
	}
	if err != nil {
		return nil, err
	}

	ordered := make([]domain.CompileResult, 0, len(parsed))
	for _, pt := range parsed {
		ordered = append(ordered, results[pt.Name])
	}

	o.notifyEvent(ports.EventBuildCompleted, "", fmt.Sprintf("%d target(s) built", len(ordered)))

	return ordered, nil
}

func (o *Orchestrator) bySelection() []string   { return o.onlyTargets }
func (o *Orchestrator) anyNoClean() bool        { return o.noClean }
func (o *Orchestrator) parallelRequested() bool { return o.parallel }
func (o *Orchestrator) notify() ports.Notifier  { return o.Notifier }

// notifyEvent forwards one lifecycle event to the configured Notifier, if
// any; with no Notifier wired the event is dropped and the build goes on.
func (o *Orchestrator) notifyEvent(t ports.EventType, target, message string) {
	if n := o.notify(); n != nil {
		n.Notify(ports.NewEvent(t, target, message))
	}
}

// WithOptions applies CLI flags (--parallel, --no-clean, --target) before
// Build runs; it returns the receiver so callers can chain it into the
// Build call.
func (o *Orchestrator) WithOptions(opts BuildOptions) *Orchestrator {
	o.onlyTargets = opts.OnlyTargets
	o.noClean = opts.NoClean
	o.parallel = opts.Parallel
	return o
}

func filterTargets(targets []domain.Target, only []string) []domain.Target {
	if len(only) == 0 {
		return targets
	}
	want := make(map[string]bool, len(only))
	for _, n := range only {
		want[n] = true
	}
	out := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		if want[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

func (o *Orchestrator) clean(parsed []domain.ParsedTarget) error {
	g := new(errgroup.Group)
	g.SetLimit(o.numCPU())
	for _, pt := range parsed {
		dir := pt.OutDir
		g.Go(func() error {
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			return os.MkdirAll(dir, 0o755)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) discoverOverlays(parsed []domain.ParsedTarget) (map[string]domain.Overlay, error) {
	var mu sync.Mutex
	overlays := make(map[string]domain.Overlay, len(parsed))

	g := new(errgroup.Group)
	g.SetLimit(o.numCPU())
	for _, pt := range parsed {
		pt := pt
		g.Go(func() error {
			ov := polyfill.Discover(pt.RootFiles, pt.PolyfillSuffix)
			mu.Lock()
			overlays[pt.Name] = ov
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overlays, nil
}

// runSequential executes the plan in one process with no worker pool.
func (o *Orchestrator) runSequential(groups []domain.DedupGroup, idx sourceIdentityIndex, overlays map[string]domain.Overlay) (map[string]domain.CompileResult, error) {
	sourceCache := cache.New(o.cacheCapacity())
	engine := compile.New(o.Compiler)
	results := make(map[string]domain.CompileResult)

	for _, g := range groups {
		primary := g.Primary
		overlay := overlays[primary.Name]
		host := compile.NewHost(sourceCache, overlay, o.Compiler)

		skipTypeCheck := !idx.isPrimary[primary.Name]
		o.notifyEvent(ports.EventTargetStarted, primary.Name, "")
		start := time.Now()
		res, runErr := engine.Run(compile.Request{
			ParsedTarget:     primary,
			Overlay:          overlay,
			SkipTypeCheck:    skipTypeCheck,
			SkipDeclarations: skipTypeCheck,
		}, host)
		elapsed := time.Since(start)

		cr := foldResult(primary, res, runErr, elapsed, false)
		results[primary.Name] = cr
		if cr.Success {
			o.notifyEvent(ports.EventTargetCompiled, primary.Name, "")
		} else {
			o.notifyEvent(ports.EventTargetFailed, primary.Name, cr.DiagnosticText)
		}

		if cr.Success && skipTypeCheck {
			if declSrc, ok := idx.declSource[primary.Name]; ok && declSrc != primary.Name {
				if src, ok := lookupOutDir(groups, declSrc); ok {
					if err := copyDeclarations(src, primary.OutDir, o.copyConcurrencyOrDefault()); err != nil {
						o.log().Warn("declaration copy failed", "target", primary.Name, "error", err.Error())
					}
				}
			}
		}

		for _, c := range g.Copies {
			o.notifyEvent(ports.EventTargetDeduped, c.Name, "")
			if !cr.Success {
				results[c.Name] = foldResult(c, res, runErr, 0, true)
				o.notifyEvent(ports.EventTargetFailed, c.Name, cr.DiagnosticText)
				continue
			}
			if err := copyTree(primary.OutDir, c.OutDir, o.copyConcurrencyOrDefault()); err != nil {
				results[c.Name] = domain.CompileResult{TargetName: c.Name, Success: false, OutDir: c.OutDir, RootDir: c.RootDir, Deduped: true}
				o.notifyEvent(ports.EventTargetFailed, c.Name, err.Error())
				continue
			}
			results[c.Name] = foldResult(c, res, nil, 0, true)
			o.notifyEvent(ports.EventTargetCompiled, c.Name, "")
		}
	}

	return results, nil
}

// runParallel executes the plan via a TaskGraph over a WorkerPool.
// Declaration copies for secondaries are deferred until the whole graph
// has settled, so a secondary's fast-path compile never waits on its
// source-identity twin.
func (o *Orchestrator) runParallel(ctx context.Context, groups []domain.DedupGroup, idx sourceIdentityIndex, overlays map[string]domain.Overlay, byName map[string]domain.ParsedTarget) (map[string]domain.CompileResult, error) {
	pool := workerpool.NewPool(workerpool.Size(o.numCPU(), len(groups)), o.SpawnWorker, o.log())
	defer pool.Terminate()
	if err := pool.Start(); err != nil {
		return nil, platerrors.Wrapped(platerrors.CompileErr, "starting worker pool", err)
	}

	if err := pool.WaitReady(ctx); err != nil {
		return nil, platerrors.Wrapped(platerrors.CompileErr, "worker pool failed to start (try running without --parallel)", err)
	}

	var mu sync.Mutex
	results := make(map[string]domain.CompileResult)
	primarySucceeded := make(map[string]bool)

	var tasks []Task
	for _, g := range groups {
		g := g
		primary := g.Primary
		skipTypeCheck := !idx.isPrimary[primary.Name]
		taskID := "compile:" + primary.Name

		tasks = append(tasks, Task{
			ID: taskID,
			Run: func(ctx context.Context) error {
				o.notifyEvent(ports.EventTargetStarted, primary.Name, "")
				start := time.Now()
				resp, err := pool.Compile(ctx, workerpool.CompileRequest{
					PackageRoot:      o.PackageRoot,
					Target:           primary,
					TypeCheck:        !skipTypeCheck,
					SkipDeclarations: skipTypeCheck,
					Overlay:          overlays[primary.Name],
				})
				if err != nil {
					// Infra failure (worker crash, pool terminated): this
					// DOES abort dependents and is surfaced as COMPILE_ERROR.
					mu.Lock()
					results[primary.Name] = domain.CompileResult{TargetName: primary.Name, Success: false, OutDir: primary.OutDir, RootDir: primary.RootDir}
					primarySucceeded[primary.Name] = false
					mu.Unlock()
					o.notifyEvent(ports.EventTargetFailed, primary.Name, err.Error())
					return err
				}
				elapsed := time.Since(start)
				cr := responseToResult(primary, resp, elapsed, false)

				mu.Lock()
				results[primary.Name] = cr
				primarySucceeded[primary.Name] = cr.Success
				mu.Unlock()
				if cr.Success {
					o.notifyEvent(ports.EventTargetCompiled, primary.Name, "")
				} else {
					o.notifyEvent(ports.EventTargetFailed, primary.Name, cr.DiagnosticText)
				}
				return nil // a diagnostics-level failure never aborts siblings
			},
		})

		for _, c := range g.Copies {
			c := c
			tasks = append(tasks, Task{
				ID:        "copy:" + c.Name,
				DependsOn: []string{taskID},
				Run: func(ctx context.Context) error {
					o.notifyEvent(ports.EventTargetDeduped, c.Name, "")
					mu.Lock()
					ok := primarySucceeded[primary.Name]
					mu.Unlock()
					if !ok {
						mu.Lock()
						cr := results[primary.Name]
						results[c.Name] = domain.CompileResult{TargetName: c.Name, Success: false, OutDir: c.OutDir, RootDir: c.RootDir, Deduped: true}
						mu.Unlock()
						o.notifyEvent(ports.EventTargetFailed, c.Name, cr.DiagnosticText)
						return nil
					}
					if err := copyTree(primary.OutDir, c.OutDir, o.copyConcurrencyOrDefault()); err != nil {
						mu.Lock()
						results[c.Name] = domain.CompileResult{TargetName: c.Name, Success: false, OutDir: c.OutDir, RootDir: c.RootDir, Deduped: true}
						mu.Unlock()
						o.notifyEvent(ports.EventTargetFailed, c.Name, err.Error())
						return nil
					}
					mu.Lock()
					src := results[primary.Name]
					results[c.Name] = domain.CompileResult{
						TargetName:     c.Name,
						Success:        true,
						Diagnostics:    src.Diagnostics,
						DiagnosticText: src.DiagnosticText,
						OutDir:         c.OutDir,
						RootDir:        c.RootDir,
						Deduped:        true,
					}
					mu.Unlock()
					o.notifyEvent(ports.EventTargetCompiled, c.Name, "")
					return nil
				},
			})
		}
	}

	graph, err := NewTaskGraph(tasks)
	if err != nil {
		return nil, err
	}
	if err := graph.Run(ctx); err != nil {
		return nil, platerrors.Wrapped(platerrors.CompileErr, "parallel build", err)
	}

	mu.Lock()
	allSucceeded := true
	for _, ok := range primarySucceeded {
		if !ok {
			allSucceeded = false
			break
		}
	}
	mu.Unlock()

	if allSucceeded {
		for name, declSrc := range idx.declSource {
			if declSrc == name {
				continue
			}
			target, ok := byName[name]
			if !ok {
				continue
			}
			srcTarget, ok := byName[declSrc]
			if !ok {
				continue
			}
			if err := copyDeclarations(srcTarget.OutDir, target.OutDir, o.copyConcurrencyOrDefault()); err != nil {
				o.log().Warn("deferred declaration copy failed", "target", name, "error", err.Error())
			}
		}
	}

	return results, nil
}

func (o *Orchestrator) cacheCapacity() int {
	if o.CacheSize > 0 {
		return o.CacheSize
	}
	return 512
}

func (o *Orchestrator) copyConcurrencyOrDefault() int {
	if o.CopyConcurrency > 0 {
		return o.CopyConcurrency
	}
	return defaultCopyConcurrency
}

func lookupOutDir(groups []domain.DedupGroup, name string) (string, bool) {
	for _, g := range groups {
		for _, m := range g.Members() {
			if m.Name == name {
				return m.OutDir, true
			}
		}
	}
	return "", false
}

// foldResult folds a compile.Result into the domain.CompileResult the
// orchestrator returns.
func foldResult(pt domain.ParsedTarget, res compile.Result, err error, elapsed time.Duration, deduped bool) domain.CompileResult {
	if err != nil {
		return domain.CompileResult{
			TargetName: pt.Name,
			Success:    false,
			OutDir:     pt.OutDir,
			RootDir:    pt.RootDir,
			Diagnostics: []domain.Diagnostic{{Kind: domain.DiagnosticError, Message: err.Error()}},
			CompileTime: elapsed,
			Deduped:     deduped,
		}
	}
	return domain.CompileResult{
		TargetName:     pt.Name,
		Success:        !domain.HasErrors(res.Diagnostics),
		Diagnostics:    res.Diagnostics,
		DiagnosticText: diagnostics.Format(pt.Name, res.Diagnostics),
		OutDir:         pt.OutDir,
		RootDir:        pt.RootDir,
		CompileTime:    elapsed,
		Deduped:        deduped,
	}
}

func responseToResult(pt domain.ParsedTarget, resp workerpool.CompileResponse, elapsed time.Duration, deduped bool) domain.CompileResult {
	return domain.CompileResult{
		TargetName:     pt.Name,
		Success:        resp.Success,
		DiagnosticText: resp.DiagnosticText,
		OutDir:         pt.OutDir,
		RootDir:        pt.RootDir,
		CompileTime:    elapsed,
		Deduped:        deduped,
	}
}

// copyDeclarations mirrors every declaration file under srcOutDir into
// dstOutDir, preserving relative paths: a secondary that skipped both
// type-checking and declaration emit gets the primary's declarations
// copied in.
func copyDeclarations(srcOutDir, dstOutDir string, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultCopyConcurrency
	}
	var files []string
	err := filepath.Walk(srcOutDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !isDeclarationFile(path) {
			return nil
		}
		rel, err := filepath.Rel(srcOutDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			return copyFileCloneOrBytes(filepath.Join(srcOutDir, rel), filepath.Join(dstOutDir, rel))
		})
	}
	return g.Wait()
}

func isDeclarationFile(path string) bool {
	for _, ext := range declarationExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
