// Command warp is the CLI surface: build/watch/init plus the shared flag
// set. A hidden "--worker" flag re-invokes this same binary as a
// WorkerPool subprocess speaking newline-delimited JSON on stdin/stdout;
// it is never part of the documented surface.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"warp/internal/platform/config"
	platerrors "warp/internal/platform/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// workerFlag is checked before any other flag parsing: a worker subprocess
// is spawned with exactly this one argument, nothing else, so it can be
// recognized without going through the public Flags schema at all.
const workerFlag = "--worker"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) == 1 && argv[0] == workerFlag {
		if err := runWorker(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "worker:", err)
			return 2
		}
		return 0
	}

	for _, a := range argv {
		if a == "--version" {
			config.PrintVersion(version, commit, date) // exits
			return 0
		}
	}

	flags, err := config.ParseFlags(argv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			config.PrintHelp() // exits
			return 0
		}
		fmt.Fprintln(os.Stderr, "warp:", err)
		return 2
	}

	switch flags.Command {
	case "build":
		return runBuild(flags)
	case "watch":
		return runWatch(flags)
	case "init":
		return runInit(flags)
	case "help":
		config.PrintHelp() // exits
		return 0
	default:
		fmt.Fprintf(os.Stderr, "warp: unknown command %q (want build, watch, or init)\n", flags.Command)
		return 2
	}
}

// exitCodeFor maps a typed error onto the exit code table: a known
// validation/config/tsconfig error is 1, anything else unexpected is 2.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := platerrors.KindOf(err); ok {
		return 1
	}
	return 2
}
