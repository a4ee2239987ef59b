// Package erasure is a minimal reference ports.Compiler: it performs
// regex-based type-annotation stripping rather than a real type-checked
// compile. Guaranteeing the semantics of the underlying compiler is out
// of this repository's scope — the core only orchestrates whatever
// Compiler it is given. This adapter exists so cmd/warp has a real,
// runnable default; a production deployment would substitute a binding
// to an actual TypeScript-compatible compiler here without touching
// anything under internal/core.
package erasure

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"warp/internal/core/domain"
	"warp/internal/core/ports"
	"warp/internal/platform/registry"
)

// Compiler implements ports.Compiler.
type Compiler struct{}

// New creates the reference compiler adapter.
func New() *Compiler { return &Compiler{} }

// Parse implements ports.Compiler.
func (c *Compiler) Parse(path, content string, lv ports.LanguageVersion) ports.SourceFile {
	return ports.SourceFile{Path: path, Content: content, LanguageVersion: lv}
}

// CreateProgram implements ports.Compiler's full-program path.
func (c *Compiler) CreateProgram(opts ports.ProgramOptions, host ports.CompileHost) (ports.Program, error) {
	return &program{opts: opts, host: host}, nil
}

// Transpile implements ports.Compiler's fast-transpile path: a per-file
// type-erasure pass with no cross-file analysis. OutputPath is left to
// the engine's fast path, which owns the outDir-relative naming
// convention; Transpile only produces content.
func (c *Compiler) Transpile(req ports.TranspileRequest) (ports.TranspileResult, error) {
	return ports.TranspileResult{Output: stripTypes(req.Content)}, nil
}

type program struct {
	opts ports.ProgramOptions
	host ports.CompileHost
}

// assignRegex is a deliberately narrow "type checker": it flags one
// violation shape — a string literal assigned to a `: number`-declared
// binding — so the diagnostic path has something real to exercise
// without implementing a type system.
var assignRegex = regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+(\w+)\s*:\s*number\s*=\s*(['"])([^'"]*)['"]`)

func (p *program) SemanticDiagnostics() []domain.Diagnostic {
	var diags []domain.Diagnostic
	for _, rf := range p.opts.RootFiles {
		sf, err := p.host.GetSource(rf, ports.LanguageVersionLatest)
		if err != nil {
			diags = append(diags, domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()})
			continue
		}
		for _, m := range assignRegex.FindAllStringSubmatchIndex(sf.Content, -1) {
			line := strings.Count(sf.Content[:m[0]], "\n")
			diags = append(diags, domain.Diagnostic{
				Kind:    domain.DiagnosticError,
				Code:    2322,
				File:    rf,
				Pos:     domain.Position{Line: line, Column: 0},
				HasPos:  true,
				Message: "Type 'string' is not assignable to type 'number'.",
			})
		}
	}
	sort.Slice(diags, func(i, j int) bool { return diags[i].File < diags[j].File })
	return diags
}

func (p *program) Emit() ([]ports.EmitResult, []domain.Diagnostic, error) {
	type outcome struct {
		emit ports.EmitResult
		diag *domain.Diagnostic
	}
	outcomes := make([]outcome, len(p.opts.RootFiles))

	var wg sync.WaitGroup
	for i, rf := range p.opts.RootFiles {
		i, rf := i, rf
		wg.Add(1)
		go func() {
			defer wg.Done()
			sf, err := p.host.GetSource(rf, ports.LanguageVersionLatest)
			if err != nil {
				outcomes[i] = outcome{diag: &domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()}}
				return
			}

			rel, relErr := filepath.Rel(p.opts.RootDir, rf)
			if relErr != nil {
				rel = filepath.Base(rf)
			}
			ext := filepath.Ext(rel)
			base := strings.TrimSuffix(rel, ext)
			outPath := filepath.Join(p.opts.OutDir, base+registry.OutputExtensionFor(ext))

			if err := writeFile(outPath, stripTypes(sf.Content)); err != nil {
				outcomes[i] = outcome{diag: &domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()}}
				return
			}
			emit := ports.EmitResult{OutputPath: outPath}

			if !p.opts.SkipDeclarations {
				declPath := filepath.Join(p.opts.OutDir, base+registry.DeclarationExtensionFor(ext))
				if err := writeFile(declPath, declarationStub(sf.Content)); err != nil {
					outcomes[i] = outcome{diag: &domain.Diagnostic{Kind: domain.DiagnosticError, File: rf, Message: err.Error()}}
					return
				}
				emit.DeclarationPath = declPath
			}
			outcomes[i] = outcome{emit: emit}
		}()
	}
	wg.Wait()

	var diags []domain.Diagnostic
	var emitted []ports.EmitResult
	for _, o := range outcomes {
		if o.diag != nil {
			diags = append(diags, *o.diag)
			continue
		}
		emitted = append(emitted, o.emit)
	}
	return emitted, diags, nil
}

// typeAnnotationRegex strips ": Type" parameter/return/variable
// annotations: a colon after an identifier or closing paren/bracket,
// followed by a simple type and then one of , ) = ; or a newline, which
// the second group captures so the replacement can put it back. It does
// not tell annotations apart from other colons of that shape, so a
// ternary's "b : c;" or an object literal's "a: 1," is stripped too.
var typeAnnotationRegex = regexp.MustCompile(`([\w\]\)])\s*:\s*[\w<>\[\].| ]+([,)=;\n])`)
var interfaceBlockRegex = regexp.MustCompile(`(?s)(?:export\s+)?interface\s+\w+\s*\{.*?\}\n?`)
var typeAliasRegex = regexp.MustCompile(`(?m)^(?:export\s+)?type\s+\w+.*=.*;?\s*$`)

// stripTypes performs the erasure transform: drop interface/type
// declarations entirely (they have no runtime representation) and strip
// inline type annotations from the remaining source.
func stripTypes(src string) string {
	out := interfaceBlockRegex.ReplaceAllString(src, "")
	out = typeAliasRegex.ReplaceAllString(out, "")
	out = typeAnnotationRegex.ReplaceAllString(out, "$1$2")
	return out
}

// declarationStub produces a minimal ambient declaration: this reference
// compiler does not infer real types, so it emits an untyped re-export
// shape sufficient for the manifest's "types" condition to point at a
// real file on disk (the missing-artifact check only requires the file
// to exist, not to be semantically complete).
func declarationStub(src string) string {
	var exports []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "export function "):
			exports = append(exports, "export declare "+strings.TrimPrefix(trimmed, "export "))
		case strings.HasPrefix(trimmed, "export const "), strings.HasPrefix(trimmed, "export class "):
			exports = append(exports, "export declare "+strings.TrimPrefix(trimmed, "export "))
		}
	}
	if len(exports) == 0 {
		return "export {};\n"
	}
	return strings.Join(exports, "\n") + "\n"
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
