package rdf

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExpanded(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

func buildTestNodeMap(t *testing.T, doc string) (NodeMap, *IdentifierIssuer) {
	t.Helper()
	issuer := NewIdentifierIssuer("_:b")
	nm, err := BuildNodeMap(context.Background(), mustExpanded(t, doc), issuer)
	require.NoError(t, err)
	return nm, issuer
}

func TestBuildNodeMap_RelabelsBlankNodes(t *testing.T) {
	nm, issuer := buildTestNodeMap(t, `[
		{"@id": "_:x", "@type": ["urn:T"], "urn:knows": [{"@id": "_:y"}], "urn:name": [{"@value": "X"}]},
		{"@id": "_:y", "urn:name": [{"@value": "Y"}]}
	]`)

	assert.Equal(t, []string{"_:x", "_:y"}, issuer.Order())
	graph := nm[DefaultGraph]
	require.Contains(t, graph, "_:b0")
	require.Contains(t, graph, "_:b1")

	x := graph["_:b0"]
	assert.Equal(t, []string{"urn:T"}, x.Types)
	assert.Equal(t, []Value{NodeRef{ID: "_:b1"}}, x.Properties["urn:knows"])
	assert.Equal(t, []Value{&ValueObject{Value: "X"}}, x.Properties["urn:name"])
	assert.Equal(t, []string{"urn:knows", "urn:name"}, x.PropertyNames())

	y := graph["_:b1"]
	assert.Equal(t, []Value{&ValueObject{Value: "Y"}}, y.Properties["urn:name"])
}

func TestBuildNodeMap_BlankNodeTypeAndProperty(t *testing.T) {
	nm, issuer := buildTestNodeMap(t, `[
		{"@id": "urn:s", "@type": ["_:t"], "_:p": [{"@value": "v"}]}
	]`)
	assert.Equal(t, []string{"_:t", "_:p"}, issuer.Order(), "types are relabeled before properties")
	s := nm[DefaultGraph]["urn:s"]
	assert.Equal(t, []string{"_:b0"}, s.Types)
	assert.Contains(t, s.Properties, "_:b1")
}

func TestBuildNodeMap_AnonymousNode(t *testing.T) {
	nm, issuer := buildTestNodeMap(t, `[
		{"@id": "urn:s", "urn:p": [{"urn:q": [{"@value": "v"}]}]}
	]`)
	assert.Empty(t, issuer.Order(), "minted node ids are not recorded")
	s := nm[DefaultGraph]["urn:s"]
	require.Equal(t, []Value{NodeRef{ID: "_:b0"}}, s.Properties["urn:p"])
	assert.Equal(t, []Value{&ValueObject{Value: "v"}}, nm[DefaultGraph]["_:b0"].Properties["urn:q"])
}

func TestBuildNodeMap_Reverse(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:a", "@reverse": {"urn:parent": [{"@id": "urn:b"}]}}
	]`)
	graph := nm[DefaultGraph]
	require.Contains(t, graph, "urn:b")
	assert.Equal(t, []Value{NodeRef{ID: "urn:a"}}, graph["urn:b"].Properties["urn:parent"])
	assert.True(t, graph["urn:a"].IsReference())

	top := nm.TopLevel(DefaultGraph)
	require.Len(t, top, 1)
	assert.Equal(t, "urn:b", top[0].ID)
}

func TestBuildNodeMap_NamedGraph(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:g", "@graph": [{"@id": "urn:s", "urn:p": [{"@value": "v"}]}]}
	]`)
	assert.Equal(t, []string{DefaultGraph, "urn:g"}, nm.GraphNames())
	assert.Equal(t, []string{"urn:s"}, nm.Subjects("urn:g"))
	assert.Contains(t, nm[DefaultGraph], "urn:g")
	assert.Empty(t, nm.TopLevel(DefaultGraph))

	merged := nm.Merged()
	assert.Contains(t, merged, "urn:g")
	assert.Equal(t, []Value{&ValueObject{Value: "v"}}, merged["urn:s"].Properties["urn:p"])
}

func TestBuildNodeMap_Included(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:s", "@included": [{"@id": "urn:t", "urn:p": [{"@value": "x"}]}]}
	]`)
	assert.Equal(t, []string{"urn:s", "urn:t"}, nm.Subjects(DefaultGraph))
}

func TestBuildNodeMap_List(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:s", "urn:p": [{"@list": [{"@value": "1"}, {"@id": "urn:o"}, {"@list": []}]}]}
	]`)
	values := nm[DefaultGraph]["urn:s"].Properties["urn:p"]
	require.Len(t, values, 1)
	list, ok := values[0].(*ListObject)
	require.True(t, ok)
	require.Len(t, list.Items, 3)
	assert.Equal(t, &ValueObject{Value: "1"}, list.Items[0])
	assert.Equal(t, NodeRef{ID: "urn:o"}, list.Items[1])
	assert.Equal(t, &ListObject{Items: []Value{}}, list.Items[2])
	assert.Contains(t, nm[DefaultGraph], "urn:o")
}

func TestBuildNodeMap_DuplicateValues(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:s", "urn:p": [{"@value": "v"}, {"@value": "v"}, {"@value": "v", "@language": "en"}, {"@id": "urn:o"}, {"@id": "urn:o"}]}
	]`)
	assert.Len(t, nm[DefaultGraph]["urn:s"].Properties["urn:p"], 3)
}

func TestBuildNodeMap_Keywords(t *testing.T) {
	nm, _ := buildTestNodeMap(t, `[
		{"@id": "urn:s", "@index": "i1", "@custom": "kept"}
	]`)
	s := nm[DefaultGraph]["urn:s"]
	assert.Equal(t, "i1", s.Index)
	assert.Equal(t, "kept", s.Keywords["@custom"])
	assert.False(t, s.IsReference())
}

func TestBuildNodeMap_ConflictingIndex(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	_, err := BuildNodeMap(context.Background(), mustExpanded(t, `[
		{"@id": "urn:s", "@index": "a"},
		{"@id": "urn:s", "@index": "b"}
	]`), issuer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingIndex)
	assert.Equal(t, ErrCodeConflictingIndex, Code(err))

	var nodeErr *NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "urn:s", nodeErr.Subject)
	assert.Equal(t, DefaultGraph, nodeErr.Graph)
}

func TestBuildNodeMap_InvalidNode(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	_, err := BuildNodeMap(context.Background(), mustExpanded(t, `[{"@id": 5}]`), issuer)
	assert.ErrorIs(t, err, ErrInvalidNode)

	_, err = BuildNodeMap(context.Background(), mustExpanded(t, `[{"@id": "urn:s", "@type": [1]}]`), issuer)
	assert.ErrorIs(t, err, ErrInvalidNode)
	assert.Equal(t, ErrCodeInvalidNode, Code(err))
}

func TestBuildNodeMap_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildNodeMap(ctx, mustExpanded(t, `[{"@id": "urn:s"}]`), NewIdentifierIssuer("_:b"))
	assert.ErrorIs(t, err, context.Canceled)
}
