package rdf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	ld "github.com/piprate/json-gold/ld"
)

// JSONLDOptions configures JSON-LD to RDF conversion.
type JSONLDOptions struct {
	// Base resolves relative IRIs in the document.
	Base string
	// ProcessingMode controls JSON-LD version semantics: "json-ld-1.0" or "json-ld-1.1".
	ProcessingMode string
	// ExpandContext provides an external context for expansion.
	ExpandContext any
	// SafeMode toggles strict JSON-LD error handling during expansion.
	SafeMode bool

	// ProduceGeneralizedRDF keeps quads with blank node predicates.
	ProduceGeneralizedRDF bool
	// RDFDirection selects literal base direction handling; see EmitOptions.
	RDFDirection string

	// DocumentLoader resolves remote contexts. Nil uses json-gold's HTTP loader.
	DocumentLoader DocumentLoader

	// MaxInputBytes limits the size of JSON-LD input when decoding. Zero means unlimited.
	MaxInputBytes int64
}

// DocumentLoader resolves remote contexts/documents.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// DocumentLoaderFunc adapts a function to DocumentLoader.
type DocumentLoaderFunc func(ctx context.Context, iri string) (RemoteDocument, error)

// LoadDocument calls f.
func (f DocumentLoaderFunc) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	return f(ctx, iri)
}

// RemoteDocument represents a fetched JSON-LD document.
type RemoteDocument struct {
	DocumentURL string
	Document    any
	ContextURL  string
}

// DecodeJSONLD reads a JSON document from r.
func DecodeJSONLD(ctx context.Context, r io.Reader, opts JSONLDOptions) (any, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if opts.MaxInputBytes > 0 {
		r = io.LimitReader(r, opts.MaxInputBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("jsonld: read input: %w", err)
	}
	if opts.MaxInputBytes > 0 && int64(len(data)) > opts.MaxInputBytes {
		return nil, ErrInputTooLarge
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonld: decode input: %w", err)
	}
	return doc, nil
}

// ExpandJSONLD runs JSON-LD expansion.
func ExpandJSONLD(ctx context.Context, input any, opts JSONLDOptions) (any, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	expanded, err := ld.NewJsonLdProcessor().Expand(input, newJSONGoldOptions(ctx, opts))
	if err != nil {
		return nil, fmt.Errorf("jsonld: expand: %w", err)
	}
	return expanded, nil
}

// JSONLDToRDF expands a JSON-LD document, builds its node map and emits the
// dataset's quads. Blank nodes are relabeled _:b0, _:b1, ... in document order.
func JSONLDToRDF(ctx context.Context, input any, opts JSONLDOptions) ([]Quad, error) {
	expanded, err := ExpandJSONLD(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	issuer := NewIdentifierIssuer("_:b")
	nm, err := BuildNodeMap(ctx, expanded, issuer)
	if err != nil {
		return nil, err
	}
	return EmitQuads(nm, issuer, EmitOptions{
		ProduceGeneralizedRDF: opts.ProduceGeneralizedRDF,
		RDFDirection:          opts.RDFDirection,
	}), nil
}

// ParseJSONLD decodes a JSON-LD document from r and converts it to quads.
func ParseJSONLD(ctx context.Context, r io.Reader, opts JSONLDOptions) ([]Quad, error) {
	doc, err := DecodeJSONLD(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	return JSONLDToRDF(ctx, doc, opts)
}

type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner DocumentLoader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	remote, err := l.inner.LoadDocument(l.ctx, iri)
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

// HTTPDocumentLoader fetches remote documents with json-gold's default loader.
func HTTPDocumentLoader() DocumentLoader {
	inner := ld.NewDefaultDocumentLoader(nil)
	return DocumentLoaderFunc(func(ctx context.Context, iri string) (RemoteDocument, error) {
		if err := checkContext(ctx); err != nil {
			return RemoteDocument{}, err
		}
		remote, err := inner.LoadDocument(iri)
		if err != nil {
			return RemoteDocument{}, err
		}
		return RemoteDocument{
			DocumentURL: remote.DocumentURL,
			Document:    remote.Document,
			ContextURL:  remote.ContextURL,
		}, nil
	})
}

func newJSONGoldOptions(ctx context.Context, opts JSONLDOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.Base)
	if opts.ProcessingMode != "" {
		goldOpts.ProcessingMode = opts.ProcessingMode
	}
	if opts.ExpandContext != nil {
		goldOpts.ExpandContext = opts.ExpandContext
	}
	goldOpts.SafeMode = opts.SafeMode
	if opts.DocumentLoader != nil {
		goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: ctx, inner: opts.DocumentLoader}
	}
	return goldOpts
}
