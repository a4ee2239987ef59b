// internal/platform/config/help.go
package config

import (
	"fmt"
	"os"
	"runtime"
)

const helpText = `
warp - multi-target compiler orchestrator

USAGE:
  warp <command> [options]

COMMANDS:
  build     Run the pipeline once (default command)
  watch     Build, then rebuild on source/config change
  init      Scaffold a default warp.config.yml

OPTIONS:
  --config string       Path to the build configuration file
  --dry-run             Plan the build without compiling
  --no-clean            Skip removing output directories before building
  --parallel            Compile targets concurrently via a worker pool
  --target string        Restrict the build to this target (repeatable)
  --stats               Report output size metrics after a successful build
  --json                Emit a single JSON result object (implies --quiet)
  --verbose             Emit stage-by-stage progress detail
  --quiet               Suppress progress output
  -h, --help            Show this help message

CONFIGURATION FILE:
  One of warp.config.yml, warp.config.yaml, warp.config.json, or a "warp"
  key inside package.json:

    exports:
      ".": "./src/index.ts"
      "./util": "./src/util.ts"
    targets:
      - name: esm
        tsconfig: tsconfig.esm.json
      - name: browser
        tsconfig: tsconfig.browser.json
        polyfillSuffix: "-browser"

EXAMPLES:
  Build once:
    warp build

  Build with a worker pool:
    warp build --parallel

  Build only the esm and browser targets:
    warp build --target esm --target browser

  Watch for changes:
    warp watch --parallel

  Scaffold a default config:
    warp init

EXIT CODES:
  0   success
  1   compile failure or a known validation error
  2   unexpected error
`

// PrintHelp prints the custom help message and exits.
func PrintHelp() {
	fmt.Fprint(os.Stdout, helpText)
	os.Exit(0)
}

// PrintVersion prints version information and exits.
func PrintVersion(version, commit, date string) {
	fmt.Printf("warp %s\n", version)
	fmt.Printf("  Commit:  %s\n", commit)
	fmt.Printf("  Built:   %s\n", date)
	fmt.Printf("  Go:      %s\n", getGoVersion())
	os.Exit(0)
}

func getGoVersion() string {
	return runtime.Version()
}
