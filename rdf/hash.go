package rdf

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Related blank node positions.
const (
	positionSubject = "s"
	positionObject  = "o"
	positionGraph   = "g"
	positionParent  = "p" // URGNA2012: related node is the subject
	positionRef     = "r" // URGNA2012: related node is the object
)

// variant captures the points where URDNA2015 and URGNA2012 differ.
type variant struct {
	name    Algorithm
	newHash func() hash.Hash
	// graphSentinel replaces a blank node graph name with "_:g" in first-degree hashing.
	graphSentinel bool
	// bracketPredicate wraps the predicate in <> when hashing related blank nodes.
	bracketPredicate bool
	// related lists the (position, blank node) pairs a quad relates to id.
	related func(q Quad, id string) []relatedNode
}

type relatedNode struct {
	position string
	id       string
}

var urdna2015 = &variant{
	name:             AlgorithmURDNA2015,
	newHash:          sha256.New,
	bracketPredicate: true,
	related: func(q Quad, id string) []relatedNode {
		var out []relatedNode
		for _, c := range [...]struct {
			position string
			term     Term
		}{{positionSubject, q.S}, {positionObject, q.O}, {positionGraph, q.G}} {
			if b, ok := c.term.(BlankNode); ok && b.ID != id {
				out = append(out, relatedNode{position: c.position, id: b.ID})
			}
		}
		return out
	},
}

var urgna2012 = &variant{
	name:          AlgorithmURGNA2012,
	newHash:       sha1.New,
	graphSentinel: true,
	related: func(q Quad, id string) []relatedNode {
		if b, ok := q.S.(BlankNode); ok && b.ID != id {
			return []relatedNode{{position: positionParent, id: b.ID}}
		}
		if b, ok := q.O.(BlankNode); ok && b.ID != id {
			return []relatedNode{{position: positionRef, id: b.ID}}
		}
		return nil
	},
}

func variantFor(algorithm Algorithm) (*variant, error) {
	parsed, err := ParseAlgorithm(string(algorithm))
	if err != nil {
		return nil, err
	}
	if parsed == AlgorithmURGNA2012 {
		return urgna2012, nil
	}
	return urdna2015, nil
}

func (v *variant) sum(parts ...string) string {
	h := v.newHash()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hexSum(h)
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

func (v *variant) relatedPredicate(p Term) string {
	if v.bracketPredicate {
		return renderTerm(p)
	}
	return termID(p)
}

// firstDegreeTerm replaces blank nodes with the first-degree sentinels:
// "_:a" for id itself, "_:z" for every other blank node, and for URGNA2012
// "_:g" for a blank node graph name.
func (v *variant) firstDegreeTerm(t Term, id string, graphPosition bool) Term {
	b, ok := t.(BlankNode)
	if !ok {
		return t
	}
	switch {
	case graphPosition && v.graphSentinel:
		return BlankNode{ID: "g"}
	case b.ID == id:
		return BlankNode{ID: "a"}
	default:
		return BlankNode{ID: "z"}
	}
}
