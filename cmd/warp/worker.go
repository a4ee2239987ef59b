package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"warp/internal/adapters/erasure"
	"warp/internal/core/domain"
	"warp/internal/diagnostics"
	"warp/internal/platform/cache"
	"warp/internal/platform/compile"
	"warp/internal/platform/workerpool"
)

// workerCacheSize mirrors the orchestrator's sequential-mode default: a
// worker lives for the process's whole lifetime, so its SourceFileCache
// amortizes parse cost across every compile it is dispatched.
const workerCacheSize = 512

// runWorker implements one worker process's half of the build protocol: send
// "ready" once at startup, then loop reading "compile" messages and
// writing "result" messages, one at a time, until stdin closes.
//
// Each worker owns exactly one SourceFileCache and one CompileEngine for
// its whole lifetime — the compiler is loaded once here, not per request.
func runWorker(in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	sourceCache := cache.New(workerCacheSize)
	compiler := erasure.New()
	engine := compile.New(compiler)

	if err := enc.Encode(workerpool.Message{Type: workerpool.MsgReady}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg workerpool.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			// A malformed request from main is simply ignored: a bad
			// message must never crash the pool, on either side.
			continue
		}
		if msg.Type != workerpool.MsgCompile || msg.Compile == nil {
			continue
		}

		resp := handleCompile(engine, sourceCache, compiler, *msg.Compile)
		if err := enc.Encode(workerpool.Message{Type: workerpool.MsgResult, Result: &resp}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handleCompile runs one dispatched compile request using the same
// CompileEngine logic the sequential path uses.
func handleCompile(engine *compile.Engine, sourceCache *cache.LRU, compiler *erasure.Compiler, req workerpool.CompileRequest) workerpool.CompileResponse {
	host := compile.NewHost(sourceCache, req.Overlay, compiler)

	start := time.Now()
	res, err := engine.Run(compile.Request{
		ParsedTarget:     req.Target,
		Overlay:          req.Overlay,
		SkipTypeCheck:    !req.TypeCheck,
		SkipDeclarations: req.SkipDeclarations,
	}, host)
	elapsed := time.Since(start)

	if err != nil {
		return workerpool.CompileResponse{
			RequestID:      req.RequestID,
			TargetName:     req.Target.Name,
			Success:        false,
			DiagnosticText: fmt.Sprintf("[%s] %v", req.Target.Name, err),
			ErrorCount:     1,
			TimeMS:         elapsed.Milliseconds(),
			OutDir:         req.Target.OutDir,
		}
	}

	return workerpool.CompileResponse{
		RequestID:      req.RequestID,
		TargetName:     req.Target.Name,
		Success:        !domain.HasErrors(res.Diagnostics),
		DiagnosticText: diagnostics.Format(req.Target.Name, res.Diagnostics),
		ErrorCount:     countErrors(res.Diagnostics),
		TimeMS:         elapsed.Milliseconds(),
		OutDir:         req.Target.OutDir,
	}
}

func countErrors(diags []domain.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Kind == domain.DiagnosticError {
			n++
		}
	}
	return n
}
