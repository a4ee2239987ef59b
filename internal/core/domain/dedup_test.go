package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupGroupMembers(t *testing.T) {
	primary := ParsedTarget{Target: Target{Name: "esm"}}
	copyA := ParsedTarget{Target: Target{Name: "esm-min"}}
	copyB := ParsedTarget{Target: Target{Name: "esm-legacy"}}

	g := DedupGroup{Primary: primary, Copies: []ParsedTarget{copyA, copyB}}

	members := g.Members()
	assert.Equal(t, []ParsedTarget{primary, copyA, copyB}, members)
}

func TestDedupGroupMembersSingleton(t *testing.T) {
	primary := ParsedTarget{Target: Target{Name: "cjs"}}
	g := DedupGroup{Primary: primary}

	assert.Equal(t, []ParsedTarget{primary}, g.Members())
}

func TestSourceIdentityGroupTypeCheckPrimary(t *testing.T) {
	first := ParsedTarget{Target: Target{Name: "esm"}}
	second := ParsedTarget{Target: Target{Name: "cjs"}}

	g := SourceIdentityGroup{Identity: "abc", Members: []ParsedTarget{first, second}}
	assert.Equal(t, first, g.TypeCheckPrimary())
}
