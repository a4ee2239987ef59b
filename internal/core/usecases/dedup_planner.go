// Package usecases implements the compilation core's orchestration logic:
// dedup planning, the generic task graph, and the sequential/parallel
// orchestrator built on top of them.
package usecases

import "warp/internal/core/domain"

// Plan groups parsed targets into DedupGroups by compile signature, in
// first-seen-signature order. overlays maps target name to the overlay
// PolyfillDiscovery produced for it; a target with no configured suffix
// (or no discovered replacement) has an empty overlay.
func Plan(targets []domain.ParsedTarget, overlays map[string]domain.Overlay) []domain.DedupGroup {
	order := make([]string, 0, len(targets))
	bySignature := make(map[string]*domain.DedupGroup, len(targets))

	for _, t := range targets {
		effectiveSuffix := domain.EffectiveSuffix(t.PolyfillSuffix, overlays[t.Name])
		sig := domain.CompileSignature(t.Options, t.RootFiles, effectiveSuffix)

		if group, ok := bySignature[sig]; ok {
			group.Copies = append(group.Copies, t)
			continue
		}
		bySignature[sig] = &domain.DedupGroup{Primary: t}
		order = append(order, sig)
	}

	groups := make([]domain.DedupGroup, 0, len(order))
	for _, sig := range order {
		groups = append(groups, *bySignature[sig])
	}
	return groups
}

// SourceIdentityGroups groups parsed targets by source identity, the
// orthogonal dedup axis: members share a file list and effective
// polyfill suffix, so the first by declaration order type-checks and
// emits declarations; the rest may skip both.
func SourceIdentityGroups(targets []domain.ParsedTarget, overlays map[string]domain.Overlay) []domain.SourceIdentityGroup {
	order := make([]string, 0, len(targets))
	byIdentity := make(map[string]*domain.SourceIdentityGroup, len(targets))

	for _, t := range targets {
		effectiveSuffix := domain.EffectiveSuffix(t.PolyfillSuffix, overlays[t.Name])
		identity := domain.SourceIdentity(t.RootFiles, effectiveSuffix)

		group, ok := byIdentity[identity]
		if !ok {
			group = &domain.SourceIdentityGroup{Identity: identity}
			byIdentity[identity] = group
			order = append(order, identity)
		}
		group.Members = append(group.Members, t)
	}

	groups := make([]domain.SourceIdentityGroup, 0, len(order))
	for _, identity := range order {
		groups = append(groups, *byIdentity[identity])
	}
	return groups
}

// sourceIdentityIndex answers, per target name, whether that target is the
// type-check/declaration primary of its source-identity group and which
// target (itself or another) holds the declarations it can copy from.
type sourceIdentityIndex struct {
	isPrimary  map[string]bool
	declSource map[string]string // target name -> name of the target whose .d.ts files to copy from
}

// buildSourceIdentityIndex folds SourceIdentityGroups into direct per-target
// lookups the orchestrator needs when deciding whether to type-check and
// whether to defer a declaration copy.
func buildSourceIdentityIndex(groups []domain.SourceIdentityGroup) sourceIdentityIndex {
	idx := sourceIdentityIndex{
		isPrimary:  make(map[string]bool),
		declSource: make(map[string]string),
	}
	for _, g := range groups {
		primary := g.TypeCheckPrimary()
		idx.isPrimary[primary.Name] = true
		for _, m := range g.Members {
			idx.declSource[m.Name] = primary.Name
		}
	}
	return idx
}
