package domain

// DedupGroup is a set of targets sharing one compile signature: the
// primary actually compiles, the copies receive its output tree.
type DedupGroup struct {
	Primary ParsedTarget
	Copies  []ParsedTarget
}

// Members returns primary followed by copies, in declaration order.
func (g DedupGroup) Members() []ParsedTarget {
	out := make([]ParsedTarget, 0, 1+len(g.Copies))
	out = append(out, g.Primary)
	out = append(out, g.Copies...)
	return out
}

// SourceIdentityGroup is the orthogonal dedup axis: targets sharing a
// source identity share type-checking and declaration emission. The
// first member by declaration order performs both; the rest skip them.
type SourceIdentityGroup struct {
	Identity string
	Members  []ParsedTarget
}

// TypeCheckPrimary returns the member responsible for type-checking and
// declaration emission: the first by declaration order.
func (g SourceIdentityGroup) TypeCheckPrimary() ParsedTarget {
	return g.Members[0]
}
