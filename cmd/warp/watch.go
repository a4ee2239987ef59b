package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"warp/internal/adapters/erasure"
	"warp/internal/adapters/tsconfig"
	"warp/internal/core/domain"
	"warp/internal/core/usecases"
	"warp/internal/manifest"
	"warp/internal/platform/config"
	"warp/internal/platform/logx"
	"warp/internal/platform/ui"
	"warp/internal/platform/workerpool"
	"warp/internal/watch"
)

// runWatch implements the `watch` command: build once, then rebuild on
// source/config change, until Ctrl+C.
func runWatch(flags *config.Flags) int {
	ctx, cancel := rootContext()
	defer cancel()

	cfg, cfgPath, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return exitCodeFor(err)
	}

	packageDir, err := filepath.Abs(filepath.Dir(cfgPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return 2
	}

	targets := config.ToTargets(cfg)
	parsed, err := parseForManifest(packageDir, targets)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return 2
	}

	roots := make([]string, 0, len(parsed))
	seen := make(map[string]bool, len(parsed))
	for _, pt := range parsed {
		if !seen[pt.RootDir] {
			seen[pt.RootDir] = true
			roots = append(roots, pt.RootDir)
		}
	}

	logger := logx.New()
	presenter := presenterFor(flags)
	defer presenter.Close()

	build := func(ctx context.Context) error {
		notifier := ui.NewNotifier(presenter)
		orch := &usecases.Orchestrator{
			ConfigParser: tsconfig.New(packageDir),
			Compiler:     erasure.New(),
			Notifier:     notifier,
			Logger:       logger,
			PackageRoot:  packageDir,
		}
		if flags.Parallel {
			if exe, exeErr := os.Executable(); exeErr == nil {
				orch.SpawnWorker = workerpool.NewProcessSpawner(exe, []string{"--worker"})
			}
		}
		orch.WithOptions(usecases.BuildOptions{
			Parallel:    flags.Parallel && orch.SpawnWorker != nil,
			NoClean:     flags.NoClean,
			OnlyTargets: flags.Targets,
		})

		results, buildErr := orch.Build(ctx, targets)
		if buildErr != nil {
			return buildErr
		}

		byName := make(map[string]domain.CompileResult, len(results))
		for _, r := range results {
			byName[r.TargetName] = r
		}
		rewriter := manifest.New(packageDir)
		if err := rewriter.RewriteShims(parsed); err != nil {
			presenter.Warning("module shim write failed: " + err.Error())
		}
		if err := rewriter.RewriteExports(cfg.Exports, parsed, byName); err != nil {
			presenter.Warning("manifest rewrite failed: " + err.Error())
		}

		succeeded, failed, deduped := tally(results)
		presenter.BuildFinished(succeeded, failed, deduped, "")
		return nil
	}

	loop, err := watch.New(roots, cfgPath, build, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warp: setting up watch:", err)
		return 1
	}

	if err := loop.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "warp:", err)
		return 1
	}
	return 0
}
