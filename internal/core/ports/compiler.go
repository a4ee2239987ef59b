package ports

import "warp/internal/core/domain"

// LanguageVersion enumerates the source-language revisions the underlying
// compiler understands.
type LanguageVersion int

const (
	LanguageVersionLatest LanguageVersion = iota
	LanguageVersionES2020
	LanguageVersionES2022
)

// SourceFile is a parsed source unit, owned by whichever SourceFileCache
// produced it and safe to share by reference across consumers within one
// process.
type SourceFile struct {
	// Path is the original absolute path, preserved even when the content
	// came from a polyfill overlay.
	Path            string
	Content         string
	LanguageVersion LanguageVersion
}

// EmitResult is what a full-program compile or a fast-transpile step
// produces for one source file.
type EmitResult struct {
	// OutputPath is the absolute path of the emitted JS-like artifact.
	OutputPath string
	// DeclarationPath is the absolute path of the emitted declaration file,
	// empty when declarations were skipped for this compile.
	DeclarationPath string
	// SourceMapPath is the absolute path of an external source map, empty
	// when source maps are disabled.
	SourceMapPath string
}

// ProgramOptions is the subset of a ParsedTarget's resolved options the
// underlying compiler needs to build a program: the effective (possibly
// overlay-filtered) root files, the canonicalized options, and the output
// locations.
type ProgramOptions struct {
	RootFiles        []string
	Options          domain.CompilerOptions
	OutDir           string
	RootDir          string
	SkipTypeCheck    bool
	SkipDeclarations bool
}

// Program is a single full-program compile unit: semantic analysis plus
// emit, produced by Compiler.CreateProgram.
type Program interface {
	// SemanticDiagnostics runs (or skips, per ProgramOptions.SkipTypeCheck)
	// pre-emit semantic analysis and returns any diagnostics.
	SemanticDiagnostics() []domain.Diagnostic

	// Emit writes output files (and declarations unless SkipDeclarations)
	// and returns the emitted file list plus any emit diagnostics.
	Emit() ([]EmitResult, []domain.Diagnostic, error)
}

// TranspileRequest is one file's input to the fast transpile path.
type TranspileRequest struct {
	// Path is the original absolute path, identity preserved.
	Path    string
	Content string
	Options domain.CompilerOptions
}

// TranspileResult is the fast path's per-file output.
type TranspileResult struct {
	OutputPath    string
	Output        string
	SourceMapPath string
	SourceMap     string
}

// Compiler abstracts the underlying per-language compiler program. The core
// only orchestrates it — guaranteeing the semantics of the underlying
// compiler is out of scope; this interface is implemented by an external
// collaborator the core is configured with.
type Compiler interface {
	// Parse produces a SourceFile from raw content, used by CompileHost to
	// populate the SourceFileCache.
	Parse(path, content string, lv LanguageVersion) SourceFile

	// CreateProgram builds a full program over the given options and host.
	CreateProgram(opts ProgramOptions, host CompileHost) (Program, error)

	// Transpile runs the fast, per-file transform path used when a
	// sibling in the source-identity group has already type-checked and
	// emitted declarations.
	Transpile(req TranspileRequest) (TranspileResult, error)
}
