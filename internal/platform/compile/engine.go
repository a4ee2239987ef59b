package compile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"warp/internal/core/domain"
	"warp/internal/core/ports"
	"warp/internal/platform/polyfill"
	"warp/internal/platform/registry"
)

// Request is one target's compile job, as assembled by the planner/task
// graph.
type Request struct {
	ParsedTarget     domain.ParsedTarget
	Overlay          domain.Overlay
	SkipTypeCheck    bool
	SkipDeclarations bool
	LanguageVersion  ports.LanguageVersion
}

// Result is the raw outcome of one CompileEngine.Run call, before it is
// folded into a domain.CompileResult by the usecase layer.
type Result struct {
	Diagnostics []domain.Diagnostic
	Emitted     []ports.EmitResult
}

// Engine runs a single compile: the full program path when type-checking
// or declarations are needed, the fast transpile path otherwise.
type Engine struct {
	compiler ports.Compiler
}

// New creates a CompileEngine bound to the given underlying compiler.
func New(compiler ports.Compiler) *Engine {
	return &Engine{compiler: compiler}
}

// Run executes req and returns its diagnostics and emitted files.
func (e *Engine) Run(req Request, host ports.CompileHost) (Result, error) {
	effectiveSuffix := domain.EffectiveSuffix(req.ParsedTarget.PolyfillSuffix, req.Overlay)
	rootFiles := req.ParsedTarget.RootFiles
	if effectiveSuffix != "" {
		rootFiles = polyfill.FilterRootFiles(rootFiles, req.Overlay)
	}

	if req.SkipTypeCheck && req.SkipDeclarations {
		return e.runFastPath(req, rootFiles)
	}
	return e.runFullProgram(req, rootFiles, host)
}

// runFullProgram builds a program over rootFiles and drives semantic
// analysis (unless skipped) and emit, via the injected compiler.
func (e *Engine) runFullProgram(req Request, rootFiles []string, host ports.CompileHost) (Result, error) {
	opts := req.ParsedTarget.Options.Clone()
	program, err := e.compiler.CreateProgram(ports.ProgramOptions{
		RootFiles:        rootFiles,
		Options:          opts,
		OutDir:           req.ParsedTarget.OutDir,
		RootDir:          req.ParsedTarget.RootDir,
		SkipTypeCheck:    req.SkipTypeCheck,
		SkipDeclarations: req.SkipDeclarations,
	}, host)
	if err != nil {
		return Result{}, err
	}

	var diags []domain.Diagnostic
	if !req.SkipTypeCheck {
		diags = append(diags, program.SemanticDiagnostics()...)
	}

	emitted, emitDiags, err := program.Emit()
	diags = append(diags, emitDiags...)
	if err != nil {
		// I/O errors during emit surface as diagnostics, not aborts.
		diags = append(diags, domain.Diagnostic{
			Kind:    domain.DiagnosticError,
			Message: err.Error(),
		})
	}

	return Result{Diagnostics: diags, Emitted: emitted}, nil
}

// runFastPath reads root files concurrently (substituting overlay content
// where set), transforms each with the injected compiler, and writes
// outputs and source maps itself — it never constructs a Program.
func (e *Engine) runFastPath(req Request, rootFiles []string) (Result, error) {
	type outcome struct {
		emit ports.EmitResult
		diag *domain.Diagnostic
	}

	// The fast path never builds a Program, so nothing consults the
	// package manifest per file; a platform-aware module option must be
	// pinned to a concrete kind up front.
	opts := req.ParsedTarget.Options
	if configured, _ := opts["module"].(string); registry.IsPlatformAware(configured) {
		opts = opts.Clone()
		opts["module"] = string(registry.ResolveModuleKind(req.ParsedTarget.ModuleType, configured))
	}

	outcomes := make([]outcome, len(rootFiles))
	var wg sync.WaitGroup
	for i, rf := range rootFiles {
		i, rf := i, rf
		wg.Add(1)
		go func() {
			defer wg.Done()

			diskPath := rf
			if replacement, ok := req.Overlay.ReplacementFor(rf); ok {
				diskPath = replacement
			}
			content, err := os.ReadFile(diskPath)
			if err != nil {
				outcomes[i] = outcome{diag: &domain.Diagnostic{
					Kind:    domain.DiagnosticError,
					File:    rf,
					Message: err.Error(),
				}}
				return
			}

			tr, err := e.compiler.Transpile(ports.TranspileRequest{
				Path:    rf,
				Content: string(content),
				Options: opts,
			})
			if err != nil {
				outcomes[i] = outcome{diag: &domain.Diagnostic{
					Kind:    domain.DiagnosticError,
					File:    rf,
					Message: err.Error(),
				}}
				return
			}

			outPath := outputPathFor(req.ParsedTarget, rf)
			if err := writeFile(outPath, tr.Output); err != nil {
				outcomes[i] = outcome{diag: &domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()}}
				return
			}

			emit := ports.EmitResult{OutputPath: outPath}
			if tr.SourceMap != "" {
				mapPath := outPath + ".map"
				if err := writeFile(mapPath, tr.SourceMap); err != nil {
					outcomes[i] = outcome{diag: &domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()}}
					return
				}
				emit.SourceMapPath = mapPath
			}
			outcomes[i] = outcome{emit: emit}
		}()
	}
	wg.Wait()

	// outcomes[i] was written by the goroutine for rootFiles[i], so the
	// slice is already in root-file declaration order regardless of which
	// goroutine finished first — no re-sort needed.
	var diags []domain.Diagnostic
	var emitted []ports.EmitResult
	for _, o := range outcomes {
		if o.diag != nil {
			diags = append(diags, *o.diag)
			continue
		}
		emitted = append(emitted, o.emit)
	}
	return Result{Diagnostics: diags, Emitted: emitted}, nil
}

// outputPathFor mirrors root path relative to RootDir into OutDir with the
// extension remapped.
func outputPathFor(pt domain.ParsedTarget, rootFile string) string {
	rel, err := filepath.Rel(pt.RootDir, rootFile)
	if err != nil {
		rel = filepath.Base(rootFile)
	}
	ext := filepath.Ext(rel)
	outExt := registry.OutputExtensionFor(ext)
	rel = strings.TrimSuffix(rel, ext) + outExt
	return filepath.Join(pt.OutDir, rel)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
