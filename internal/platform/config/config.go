// Package config discovers, parses, and validates warp's configuration:
// the CLI flag surface (via pflag) and the package's build configuration
// file (warp.config.yml/.yaml/.json, or a "warp" key embedded in the
// package manifest).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"warp/internal/core/domain"
	platerrors "warp/internal/platform/errors"
	"warp/internal/platform/validator"
)

// candidateFileNames is the discovery order for an un-specified config
// path: yml before yaml before json, then fall back to the package
// manifest's embedded "warp" key.
var candidateFileNames = []string{"warp.config.yml", "warp.config.yaml", "warp.config.json"}

const manifestFileName = "package.json"

// TargetSpec is one entry of the config file's "targets" list.
type TargetSpec struct {
	Name           string      `yaml:"name" json:"name"`
	Condition      string      `yaml:"condition" json:"condition"`
	TSConfig       string      `yaml:"tsconfig" json:"tsconfig"`
	PolyfillSuffix interface{} `yaml:"polyfillSuffix" json:"polyfillSuffix"`
	ModuleType     string      `yaml:"moduleType" json:"moduleType"`
}

// FileConfig is the parsed config file.
type FileConfig struct {
	Exports map[string]string `yaml:"exports" json:"exports"`
	Targets []TargetSpec      `yaml:"targets" json:"targets"`
}

// Flags is the CLI surface: one build/watch/init command plus shared
// flags, parsed with pflag.
type Flags struct {
	Command    string
	ConfigPath string
	DryRun     bool
	NoClean    bool
	Parallel   bool
	Stats      bool
	JSON       bool
	Verbose    bool
	Quiet      bool
	Targets    []string
}

// ParseFlags parses argv (excluding the program name) into Flags. The first
// non-flag argument is the command (build/watch/init); it defaults to
// "build" when omitted. --json implies --quiet.
func ParseFlags(argv []string) (*Flags, error) {
	fs := pflag.NewFlagSet("warp", pflag.ContinueOnError)
	fs.Usage = func() {} // caller prints Usage() itself

	f := &Flags{Command: "build"}
	fs.StringVar(&f.ConfigPath, "config", "", "path to the build configuration file")
	fs.BoolVar(&f.DryRun, "dry-run", false, "plan the build without compiling")
	fs.BoolVar(&f.NoClean, "no-clean", false, "skip removing output directories before building")
	fs.BoolVar(&f.Parallel, "parallel", false, "compile targets concurrently via a worker pool")
	fs.StringSliceVar(&f.Targets, "target", nil, "restrict the build to this target (repeatable)")
	fs.BoolVar(&f.Stats, "stats", false, "report output size metrics after a successful build")
	fs.BoolVar(&f.JSON, "json", false, "emit a single JSON result object instead of progress output")
	fs.BoolVar(&f.Verbose, "verbose", false, "emit stage-by-stage progress detail")
	fs.BoolVar(&f.Quiet, "quiet", false, "suppress progress output")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	if args := fs.Args(); len(args) > 0 {
		f.Command = args[0]
	}
	if f.JSON {
		f.Quiet = true
	}
	return f, nil
}

// Discover locates the config file: explicitPath if given, else the first
// candidate name present in the working directory, else a package manifest
// carrying a "warp" key. Returns CONFIG_NOT_FOUND when nothing is found.
func Discover(explicitPath string) (path string, embedded bool, err error) {
	if explicitPath != "" {
		if _, statErr := os.Stat(explicitPath); statErr != nil {
			return "", false, platerrors.Wrapped(platerrors.ConfigNotFound, fmt.Sprintf("config file %q", explicitPath), statErr)
		}
		return explicitPath, false, nil
	}

	for _, name := range candidateFileNames {
		if _, statErr := os.Stat(name); statErr == nil {
			return name, false, nil
		}
	}

	if _, statErr := os.Stat(manifestFileName); statErr == nil {
		raw, readErr := os.ReadFile(manifestFileName)
		if readErr == nil {
			var probe map[string]json.RawMessage
			if json.Unmarshal(raw, &probe) == nil {
				if _, ok := probe["warp"]; ok {
					return manifestFileName, true, nil
				}
			}
		}
	}

	return "", false, platerrors.NewTyped(platerrors.ConfigNotFound,
		"no warp.config.yml/.yaml/.json found and no \"warp\" key in package.json")
}

// Load discovers and parses the config file, returning the resolved path
// alongside the parsed config.
func Load(explicitPath string) (*FileConfig, string, error) {
	path, embedded, err := Discover(explicitPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, path, platerrors.Wrapped(platerrors.ConfigInvalid, fmt.Sprintf("reading %q", path), err)
	}

	cfg, err := parse(path, raw, embedded)
	if err != nil {
		return nil, path, err
	}
	if err := Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func parse(path string, raw []byte, embedded bool) (*FileConfig, error) {
	if embedded {
		var wrapper struct {
			Warp FileConfig `json:"warp"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, platerrors.Wrapped(platerrors.ConfigInvalid, fmt.Sprintf("parsing \"warp\" key in %q", path), err)
		}
		return &wrapper.Warp, nil
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, platerrors.Wrapped(platerrors.ConfigInvalid, fmt.Sprintf("parsing %q", path), err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, platerrors.Wrapped(platerrors.ConfigInvalid, fmt.Sprintf("parsing %q", path), err)
		}
	default:
		return nil, platerrors.NewTypedf(platerrors.ConfigInvalid, "unrecognized config extension for %q", path)
	}
	return &cfg, nil
}

// Validate checks the schema invariants that must hold before any target
// configuration is resolved: legal export keys, non-empty target names,
// and (once conditions default to names) unique names/conditions.
func Validate(cfg *FileConfig) error {
	for key := range cfg.Exports {
		if !validator.IsSubpathKey(key) {
			return platerrors.NewTypedf(platerrors.ValidationErr, "invalid exports key %q: must be \".\" or \"./...\" with no wildcards or trailing slash", key)
		}
	}

	if len(cfg.Targets) == 0 {
		return platerrors.NewTyped(platerrors.ValidationErr, "config declares no targets")
	}

	names := make([]string, 0, len(cfg.Targets))
	conditions := make([]string, 0, len(cfg.Targets))
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if !validator.IsValidName(t.Name) {
			return platerrors.NewTypedf(platerrors.ValidationErr, "invalid target name %q", t.Name)
		}
		if t.Condition == "" {
			t.Condition = t.Name
		}
		if t.TSConfig == "" {
			return platerrors.NewTypedf(platerrors.ValidationErr, "target %q: tsconfig is required", t.Name)
		}
		names = append(names, t.Name)
		conditions = append(conditions, t.Condition)
	}

	if dup, ok := validator.DuplicateStrings(names); ok {
		return platerrors.NewTypedf(platerrors.ValidationErr, "duplicate target name %q", dup)
	}
	if dup, ok := validator.DuplicateStrings(conditions); ok {
		return platerrors.NewTypedf(platerrors.ValidationErr, "duplicate target condition %q", dup)
	}
	return nil
}

// ToTargets resolves cfg's target specs into domain.Target values,
// applying the polyfillSuffix default rule: true (or omitted) means
// "-<name>", false means no overlay, a string is used verbatim.
func ToTargets(cfg *FileConfig) []domain.Target {
	out := make([]domain.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		out = append(out, domain.Target{
			Name:           t.Name,
			Condition:      t.Condition,
			TSConfigPath:   t.TSConfig,
			PolyfillSuffix: resolveSuffix(t.Name, t.PolyfillSuffix),
			ModuleType:     t.ModuleType,
		})
	}
	return out
}

func resolveSuffix(name string, raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return "-" + name
	case bool:
		if v {
			return "-" + name
		}
		return ""
	case string:
		return v
	default:
		return "-" + name
	}
}
