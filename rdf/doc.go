// Package rdf canonicalizes RDF datasets.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// The package assigns deterministic blank node labels so that isomorphic
// datasets serialize to byte-identical N-Quads:
//   - Model: IRI, BlankNode and Literal terms, Triple and Quad statements.
//   - N-Quads: NewNQuadsDecoder/ParseNQuads read, NQuadsEncoder/FormatNQuads write.
//   - JSON-LD: ParseJSONLD and JSONLDToRDF expand a document with json-gold,
//     flatten it into a NodeMap and emit quads.
//   - Canonicalization: Canonicalize, CanonicalizeQuads and Normalize run
//     URDNA2015 (RDFC-1.0) or URGNA2012.
//   - Content addressing: CanonicalCID hashes the canonical form into a CIDv1.
//   - Observability: OptLogger, OptTracer and OptMeter hook runs into slog
//     and OpenTelemetry.
//
// Example:
//
//	quads, err := rdf.ParseNQuadsString(ctx, input)
//	if err != nil {
//	    // handle error
//	}
//	canonical, err := rdf.Canonicalize(ctx, quads)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Print(canonical)
//
// Canonicalization of datasets with large groups of indistinguishable blank
// nodes enumerates permutations and can take factorial time. Bound it for
// untrusted input with OptMaxRelatedGroupSize and a context deadline.
package rdf
