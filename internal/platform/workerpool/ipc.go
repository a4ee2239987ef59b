// Package workerpool implements the process-based worker pool: a pool of
// N worker processes, each loading the compiler once and then processing
// a stream of compile messages over its stdin/stdout pipes.
package workerpool

import (
	"warp/internal/core/domain"
)

// MessageType discriminates the three IPC record shapes. No other message
// types exist; a malformed or unrecognized message is simply dropped
// rather than crashing the pool.
type MessageType string

const (
	MsgReady   MessageType = "ready"
	MsgCompile MessageType = "compile"
	MsgResult  MessageType = "result"
)

// Message is the single wire envelope exchanged over a worker's pipes,
// newline-delimited JSON in both directions.
type Message struct {
	Type    MessageType      `json:"type"`
	Compile *CompileRequest  `json:"compile,omitempty"`
	Result  *CompileResponse `json:"result,omitempty"`
}

// CompileRequest is sent main → worker: the target reference, the
// package root, the flags, and a pre-computed overlay so the worker never
// re-scans directories a sibling already scanned.
type CompileRequest struct {
	RequestID        string              `json:"request_id"`
	PackageRoot      string              `json:"package_root"`
	Target           domain.ParsedTarget `json:"target"`
	TypeCheck        bool                `json:"type_check"`
	SkipDeclarations bool                `json:"skip_declarations"`
	Overlay          domain.Overlay      `json:"overlay"`
}

// CompileResponse is sent worker → main: target name, success,
// pre-formatted diagnostic text, error count, elapsed time, output dir.
type CompileResponse struct {
	RequestID      string `json:"request_id"`
	TargetName     string `json:"target_name"`
	Success        bool   `json:"success"`
	DiagnosticText string `json:"diagnostic_text"`
	ErrorCount     int    `json:"error_count"`
	TimeMS         int64  `json:"time_ms"`
	OutDir         string `json:"out_dir"`
}
