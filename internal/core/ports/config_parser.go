// Package ports declares the interfaces the compilation core consumes from
// or exposes to its external collaborators: configuration loading, the
// underlying per-language compiler, and build-progress notification.
package ports

import "warp/internal/core/domain"

// ConfigParser reads a single target's per-target compiler configuration
// and resolves it into a ParsedTarget. Implementations live outside the
// core; the core only consumes the resolved ParsedTarget.
type ConfigParser interface {
	Parse(target domain.Target) (domain.ParsedTarget, error)
}
