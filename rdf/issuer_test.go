package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierIssuer_IssueID(t *testing.T) {
	issuer := NewIdentifierIssuer("_:c14n")

	assert.Equal(t, "_:c14n0", issuer.IssueID("a"))
	assert.Equal(t, "_:c14n1", issuer.IssueID("b"))
	assert.Equal(t, "_:c14n0", issuer.IssueID("a"), "existing mapping must be returned")
	assert.Equal(t, []string{"a", "b"}, issuer.Order())
	assert.Equal(t, 2, issuer.Len())
	assert.Equal(t, "_:c14n", issuer.Prefix())
}

func TestIdentifierIssuer_NewIDIsUnrecorded(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")

	assert.Equal(t, "_:b0", issuer.NewID())
	assert.Equal(t, "_:b1", issuer.IssueID("x"))
	assert.Equal(t, "_:b2", issuer.NewID())

	assert.Equal(t, []string{"x"}, issuer.Order())
	assert.False(t, issuer.HasID("_:b0"))
	assert.True(t, issuer.HasID("x"))
}

func TestIdentifierIssuer_Lookup(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	_, ok := issuer.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, issuer.Len(), "lookup must not mint")

	issuer.IssueID("x")
	id, ok := issuer.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "_:b0", id)
}

func TestIdentifierIssuer_CloneIsIndependent(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	issuer.IssueID("a")

	clone := issuer.Clone()
	assert.Equal(t, "_:b1", clone.IssueID("b"))
	assert.Equal(t, "_:b1", issuer.IssueID("c"), "clone must not advance the original counter")

	assert.False(t, issuer.HasID("b"))
	assert.False(t, clone.HasID("c"))
	assert.Equal(t, []string{"a", "c"}, issuer.Order())
	assert.Equal(t, []string{"a", "b"}, clone.Order())
}

func TestIdentifierIssuer_OrderReturnsCopy(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	issuer.IssueID("a")
	order := issuer.Order()
	order[0] = "mutated"
	assert.Equal(t, []string{"a"}, issuer.Order())
}
