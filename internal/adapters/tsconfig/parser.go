// Package tsconfig implements ports.ConfigParser: it reads one target's
// per-target compiler configuration file, follows its "extends" chain,
// resolves "include"/"files" into an absolute, ordered root-file list,
// and computes the absolute out_dir and root_dir a ParsedTarget needs.
//
// This is the thin external reader carved out of the core's scope — it
// never type-checks or compiles anything, it only resolves paths and
// options.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"warp/internal/core/domain"
	platerrors "warp/internal/platform/errors"
)

// defaultInclude is used when a config names neither "include" nor "files"
// — the common case for a tsconfig that relies on defaults.
var defaultInclude = []string{"**/*.ts", "**/*.mts", "**/*.tsx"}

// fileSchema mirrors the handful of tsconfig fields this orchestrator
// actually consults; unknown fields are ignored rather than rejected, the
// way a real tsconfig reader tolerates unrelated compiler-specific keys.
type fileSchema struct {
	Extends         string         `json:"extends"`
	CompilerOptions map[string]any `json:"compilerOptions"`
	Include         []string       `json:"include"`
	Files           []string       `json:"files"`
	Exclude         []string       `json:"exclude"`
}

// Parser implements ports.ConfigParser by reading tsconfig-shaped JSON
// files relative to baseDir (the package root the config paths are
// resolved against).
type Parser struct {
	BaseDir string
}

// New creates a Parser resolving relative paths against baseDir.
func New(baseDir string) *Parser {
	return &Parser{BaseDir: baseDir}
}

// Parse implements ports.ConfigParser (via structural typing — see
// warp/internal/core/ports.ConfigParser).
func (p *Parser) Parse(target domain.Target) (domain.ParsedTarget, error) {
	if target.TSConfigPath == "" {
		return domain.ParsedTarget{}, platerrors.NewTypedf(platerrors.TSConfigError,
			"target %q: no tsconfig path configured", target.Name)
	}

	configPath := p.resolvePath(target.TSConfigPath)
	merged, err := p.load(configPath, make(map[string]bool))
	if err != nil {
		return domain.ParsedTarget{}, platerrors.Wrapped(platerrors.TSConfigError,
			fmt.Sprintf("target %q: loading %q", target.Name, configPath), err)
	}

	options := domain.CompilerOptions{}
	for k, v := range merged.CompilerOptions {
		options[k] = v
	}

	rootDir := p.optionPath(options, "rootDir", filepath.Dir(configPath))
	outDir, ok := options["outDir"].(string)
	if !ok || outDir == "" {
		return domain.ParsedTarget{}, platerrors.NewTypedf(platerrors.TSConfigError,
			"target %q: tsconfig %q omits compilerOptions.outDir", target.Name, configPath)
	}
	outDirAbs := p.resolvePath(outDir)
	options["outDir"] = outDirAbs

	rootFiles, err := resolveRootFiles(rootDir, merged)
	if err != nil {
		return domain.ParsedTarget{}, platerrors.Wrapped(platerrors.TSConfigError,
			fmt.Sprintf("target %q: resolving root files", target.Name), err)
	}

	return domain.ParsedTarget{
		Target:    target,
		Options:   options,
		OutDir:    outDirAbs,
		RootDir:   rootDir,
		RootFiles: rootFiles,
	}, nil
}

// load reads configPath and recursively merges its "extends" base into it,
// base values losing to the child's on key conflict. seen guards against a
// config that (directly or transitively) extends itself.
func (p *Parser) load(configPath string, seen map[string]bool) (fileSchema, error) {
	if seen[configPath] {
		return fileSchema{}, fmt.Errorf("circular \"extends\" chain at %q", configPath)
	}
	seen[configPath] = true

	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fileSchema{}, fmt.Errorf("tsconfig %q does not exist", configPath)
		}
		return fileSchema{}, err
	}

	var cfg fileSchema
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fileSchema{}, fmt.Errorf("parsing %q: %w", configPath, err)
	}

	if cfg.Extends == "" {
		if cfg.CompilerOptions == nil {
			cfg.CompilerOptions = map[string]any{}
		}
		return cfg, nil
	}

	baseDir := filepath.Dir(configPath)
	basePath := filepath.Join(baseDir, cfg.Extends)
	if filepath.Ext(basePath) == "" {
		basePath += ".json"
	}
	base, err := p.load(basePath, seen)
	if err != nil {
		return fileSchema{}, fmt.Errorf("extends %q: %w", cfg.Extends, err)
	}

	merged := base
	for k, v := range cfg.CompilerOptions {
		merged.CompilerOptions[k] = v
	}
	if len(cfg.Include) > 0 {
		merged.Include = cfg.Include
	}
	if len(cfg.Files) > 0 {
		merged.Files = cfg.Files
	}
	if len(cfg.Exclude) > 0 {
		merged.Exclude = cfg.Exclude
	}
	return merged, nil
}

func (p *Parser) resolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Clean(filepath.Join(p.BaseDir, rel))
}

func (p *Parser) optionPath(options domain.CompilerOptions, key, fallback string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return p.resolvePath(v)
	}
	return filepath.Clean(fallback)
}

// resolveRootFiles builds the ordered, absolute root-file list: an
// explicit "files" list is used verbatim; otherwise "include" globs (or
// defaultInclude) are expanded under rootDir and anything matching
// "exclude" is dropped. Files are deduplicated and sorted so the result is
// deterministic regardless of glob-expansion order — signature
// order-invariance depends on a stable root list here.
func resolveRootFiles(rootDir string, cfg fileSchema) ([]string, error) {
	if len(cfg.Files) > 0 {
		out := make([]string, 0, len(cfg.Files))
		for _, f := range cfg.Files {
			out = append(out, filepath.Clean(filepath.Join(rootDir, f)))
		}
		sort.Strings(out)
		return out, nil
	}

	patterns := cfg.Include
	if len(patterns) == 0 {
		patterns = defaultInclude
	}

	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		matches, err := doublestar.Glob(os.DirFS(rootDir), pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			excluded[filepath.Clean(filepath.Join(rootDir, m))] = true
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(rootDir), pattern)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			abs := filepath.Clean(filepath.Join(rootDir, m))
			if excluded[abs] || seen[abs] {
				continue
			}
			seen[abs] = true
			out = append(out, abs)
		}
	}
	sort.Strings(out)
	return out, nil
}
