package domain

import "errors"

// Sentinel errors for the domain-level validation invariants.
// These are wrapped with target-identifying context at the call site and
// surface to callers as errors.VALIDATION_ERROR (see internal/platform/errors).
var (
	ErrNoRootFiles        = errors.New("target has no root source files")
	ErrMissingOutDir      = errors.New("target has no resolved out_dir")
	ErrDuplicateName      = errors.New("duplicate target name")
	ErrDuplicateCondition = errors.New("duplicate target condition")
	ErrOutDirCollision    = errors.New("out_dir collision between targets")
	ErrCyclicPlan         = errors.New("cyclic task graph")
	ErrEmptyTaskID        = errors.New("task id must not be empty")
	ErrDuplicateTaskID    = errors.New("duplicate task id")
)
