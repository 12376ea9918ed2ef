package rdf

import "strings"

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "IRI"
	case TermBlankNode:
		return "blank node"
	case TermLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a value that can appear in RDF statements.
// The set of implementations is closed: IRI, BlankNode and Literal.
type Term interface {
	Kind() TermKind
	String() string
	sealed()
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

func (IRI) sealed() {}

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier without the "_:" marker.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return blankNodePrefix + b.ID }

func (BlankNode) sealed() {}

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI. Empty means xsd:string, or rdf:langString
	// when Lang is set.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
	// Direction is the base direction ("ltr" or "rtl"), only meaningful with Lang.
	Direction string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the N-Quads form of the literal.
func (l Literal) String() string { return renderLiteral(l) }

func (Literal) sealed() {}

// DatatypeIRI returns the effective datatype of the literal.
func (l Literal) DatatypeIRI() string {
	if l.Datatype.Value != "" {
		return l.Datatype.Value
	}
	if l.Lang != "" {
		if l.Direction != "" {
			return RDFDirLangString
		}
		return RDFLangString
	}
	return XSDString
}

// Triple is an RDF triple.
type Triple struct {
	// S is the subject (IRI or BlankNode).
	S Term
	// P is the predicate. It is an IRI unless generalized RDF is enabled.
	P Term
	// O is the object.
	O Term
}

// Quad is an RDF quad (triple + optional graph name).
type Quad struct {
	// S is the subject (IRI or BlankNode).
	S Term
	// P is the predicate. It is an IRI unless generalized RDF is enabled.
	P Term
	// O is the object.
	O Term
	// G is the graph name, or nil for the default graph.
	G Term
}

// IsZero reports whether the quad has no subject/predicate/object.
func (q Quad) IsZero() bool {
	return q.S == nil && q.P == nil && q.O == nil && q.G == nil
}

// ToTriple extracts the triple from a quad (ignores graph).
func (q Quad) ToTriple() Triple {
	return Triple{S: q.S, P: q.P, O: q.O}
}

// InDefaultGraph reports whether the quad is in the default graph (no named graph).
func (q Quad) InDefaultGraph() bool {
	return q.G == nil
}

// String returns the quad as a single N-Quads line including the trailing newline.
func (q Quad) String() string {
	return FormatNQuad(q)
}

// ToQuad converts a triple to a quad in the default graph.
func (t Triple) ToQuad() Quad {
	return Quad{S: t.S, P: t.P, O: t.O, G: nil}
}

// ToQuadInGraph converts a triple to a quad in a named graph.
func (t Triple) ToQuadInGraph(graph Term) Quad {
	return Quad{S: t.S, P: t.P, O: t.O, G: graph}
}

// NewTerm builds an IRI or blank node term from a node identifier as used in
// node maps: identifiers starting with "_:" are blank nodes.
func NewTerm(id string) Term {
	if strings.HasPrefix(id, blankNodePrefix) {
		return BlankNode{ID: id[len(blankNodePrefix):]}
	}
	return IRI{Value: id}
}

// termID is the inverse of NewTerm for IRIs and blank nodes.
func termID(t Term) string {
	switch v := t.(type) {
	case IRI:
		return v.Value
	case BlankNode:
		return v.String()
	default:
		return ""
	}
}

// isBlank reports whether t is a blank node.
func isBlank(t Term) bool {
	_, ok := t.(BlankNode)
	return ok
}
