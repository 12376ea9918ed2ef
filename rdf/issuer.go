package rdf

import (
	"maps"
	"slices"
	"strconv"
)

// IdentifierIssuer issues fresh blank node identifiers and remembers which
// existing identifier each one replaced.
//
// Identifiers are prefix + counter. The counter only grows, so an issued
// identifier is never reused within one issuer. Clone gives an independent
// copy for speculative work during N-degree hashing.
type IdentifierIssuer struct {
	prefix   string
	counter  int
	existing map[string]string
	order    []string
}

// NewIdentifierIssuer creates an issuer that mints prefix+"0", prefix+"1", ...
func NewIdentifierIssuer(prefix string) *IdentifierIssuer {
	return &IdentifierIssuer{prefix: prefix, existing: map[string]string{}}
}

// Prefix returns the prefix used for issued identifiers.
func (i *IdentifierIssuer) Prefix() string { return i.prefix }

// IssueID returns the identifier issued for old, minting and recording a new
// one on first sight.
func (i *IdentifierIssuer) IssueID(old string) string {
	if id, ok := i.existing[old]; ok {
		return id
	}
	id := i.NewID()
	i.existing[old] = id
	i.order = append(i.order, old)
	return id
}

// NewID mints an anonymous identifier that is not recorded.
func (i *IdentifierIssuer) NewID() string {
	id := i.prefix + strconv.Itoa(i.counter)
	i.counter++
	return id
}

// HasID reports whether an identifier has been issued for old.
func (i *IdentifierIssuer) HasID(old string) bool {
	_, ok := i.existing[old]
	return ok
}

// Lookup returns the identifier issued for old without minting.
func (i *IdentifierIssuer) Lookup(old string) (string, bool) {
	id, ok := i.existing[old]
	return id, ok
}

// Order returns the recorded identifiers in issuance order.
func (i *IdentifierIssuer) Order() []string {
	return slices.Clone(i.order)
}

// Len returns the number of recorded identifiers.
func (i *IdentifierIssuer) Len() int { return len(i.order) }

// Clone returns a deep copy of the issuer.
func (i *IdentifierIssuer) Clone() *IdentifierIssuer {
	return &IdentifierIssuer{
		prefix:   i.prefix,
		counter:  i.counter,
		existing: maps.Clone(i.existing),
		order:    slices.Clone(i.order),
	}
}
