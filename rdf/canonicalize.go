package rdf

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/geoknoesis/rdf-canon/rdf"

// Issuer prefixes. Issued identifiers include the "_:" marker because they
// are hashed as part of N-degree paths.
const (
	canonicalPrefix = "_:c14n"
	temporaryPrefix = "_:b"
)

// Result is the outcome of Normalize.
type Result struct {
	// NQuads is the canonical N-Quads text: sorted lines, each ending in "\n".
	NQuads string
	// Dataset is NQuads parsed back into a Dataset. It is nil when an N-Quads
	// format was requested.
	Dataset Dataset
}

// Canonicalization holds the relabeled quads of a canonicalization run.
type Canonicalization struct {
	// Quads are the relabeled quads in canonical (sorted N-Quads) order.
	Quads []Quad
	// Issued maps each input blank node identifier to its canonical identifier
	// (both without the "_:" marker).
	Issued map[string]string
}

// NQuads renders the canonical N-Quads text.
func (c *Canonicalization) NQuads() string {
	return FormatNQuads(c.Quads)
}

// Normalize canonicalizes a dataset. With an N-Quads format the result holds
// only the text; otherwise the canonical text is parsed back into a Dataset.
func Normalize(ctx context.Context, input Dataset, opts ...Option) (Result, error) {
	options := buildOptions(opts)
	format, err := ParseFormat(options.Format)
	if err != nil {
		return Result{}, err
	}
	c, err := CanonicalizeQuads(ctx, input.Quads(), opts...)
	if err != nil {
		return Result{}, err
	}
	result := Result{NQuads: c.NQuads()}
	if format == "" {
		ds, err := ParseDataset(ctx, result.NQuads, WithGeneralizedRDF())
		if err != nil {
			return Result{}, err
		}
		result.Dataset = ds
	}
	return result, nil
}

// Canonicalize returns the canonical N-Quads text of quads.
func Canonicalize(ctx context.Context, quads []Quad, opts ...Option) (string, error) {
	c, err := CanonicalizeQuads(ctx, quads, opts...)
	if err != nil {
		return "", err
	}
	return c.NQuads(), nil
}

// CanonicalizeQuads assigns canonical blank node labels to quads.
//
// The run is COLLECT, SIMPLE_LOOP, COMPLEX_RESOLUTION, RELABEL, SERIALIZE.
// Canonical identifiers are issued only from this goroutine; concurrent
// N-degree hashing (Options.Workers) works on private issuer clones.
//
// Blank node predicates (generalized RDF) are not relabeled and are hashed
// by their input labels, so for such input the result depends on those labels.
func CanonicalizeQuads(ctx context.Context, quads []Quad, opts ...Option) (*Canonicalization, error) {
	options := buildOptions(opts)
	v, err := variantFor(options.Algorithm)
	if err != nil {
		return nil, err
	}
	if _, err := ParseFormat(options.Format); err != nil {
		return nil, err
	}

	metrics, err := newCanonMetrics(options.Meter)
	if err != nil {
		return nil, err
	}

	tracer := options.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "rdf.Canonicalize", trace.WithAttributes(
		attribute.String("rdf.algorithm", string(v.name)),
		attribute.Int("rdf.quads", len(quads)),
	))
	defer span.End()

	start := time.Now()
	c := newCanonicalizer(v, options, quads)
	c.tracer = tracer
	out, err := c.run(ctx)
	metrics.record(ctx, v.name, start, out, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rdf.blank_nodes", len(out.Issued)))
	return out, nil
}

type canonicalizer struct {
	v       *variant
	opts    Options
	logger  *slog.Logger
	quads   []Quad
	nodes   map[string][]int  // blank node id -> indexes into quads
	hashes  map[string]string // first-degree hash per blank node
	issuer  *IdentifierIssuer
	workers int
	tracer  trace.Tracer
}

func newCanonicalizer(v *variant, opts Options, quads []Quad) *canonicalizer {
	return &canonicalizer{
		v:       v,
		opts:    opts,
		logger:  opts.Logger,
		quads:   quads,
		nodes:   map[string][]int{},
		hashes:  map[string]string{},
		issuer:  NewIdentifierIssuer(canonicalPrefix),
		workers: opts.Workers,
	}
}

func (c *canonicalizer) run(ctx context.Context) (*Canonicalization, error) {
	c.collect()
	c.logger.DebugContext(ctx, "canonicalize: collected",
		"algorithm", c.v.name, "quads", len(c.quads), "blank_nodes", len(c.nodes))

	ambiguous, err := c.simpleLoop(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.resolveComplex(ctx, ambiguous); err != nil {
		return nil, err
	}
	return c.relabel(), nil
}

// collect drops duplicate quads and indexes each remaining quad under every
// blank node in its subject, object or graph position.
func (c *canonicalizer) collect() {
	seen := make(map[string]struct{}, len(c.quads))
	unique := make([]Quad, 0, len(c.quads))
	for _, q := range c.quads {
		key := FormatNQuad(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, q)
	}
	c.quads = unique

	for i, q := range c.quads {
		for _, t := range [...]Term{q.S, q.O, q.G} {
			b, ok := t.(BlankNode)
			if !ok {
				continue
			}
			idx := c.nodes[b.ID]
			if len(idx) == 0 || idx[len(idx)-1] != i {
				c.nodes[b.ID] = append(idx, i)
			}
		}
	}
}

// simpleLoop issues canonical identifiers to blank nodes with a unique
// first-degree hash, repeating until a pass issues nothing. It returns the
// remaining hash groups.
func (c *canonicalizer) simpleLoop(ctx context.Context) (map[string][]string, error) {
	pending := make(map[string]struct{}, len(c.nodes))
	for id := range c.nodes {
		pending[id] = struct{}{}
	}

	var groups map[string][]string
	for round := 1; ; round++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		groups = map[string][]string{}
		for id := range pending {
			h := c.hashFirstDegreeQuads(id)
			groups[h] = append(groups[h], id)
		}
		issued := 0
		for _, h := range sortedHashes(groups) {
			ids := groups[h]
			if len(ids) > 1 {
				continue
			}
			c.issuer.IssueID(ids[0])
			delete(pending, ids[0])
			delete(groups, h)
			issued++
		}
		c.logger.DebugContext(ctx, "canonicalize: simple loop round",
			"round", round, "issued", issued, "pending", len(pending))
		if issued == 0 {
			break
		}
	}
	for h := range groups {
		sort.Strings(groups[h])
	}
	return groups, nil
}

func (c *canonicalizer) hashFirstDegreeQuads(id string) string {
	if h, ok := c.hashes[id]; ok {
		return h
	}
	lines := make([]string, 0, len(c.nodes[id]))
	for _, i := range c.nodes[id] {
		q := c.quads[i]
		lines = append(lines, FormatNQuad(Quad{
			S: c.v.firstDegreeTerm(q.S, id, false),
			P: q.P,
			O: c.v.firstDegreeTerm(q.O, id, false),
			G: c.v.firstDegreeTerm(q.G, id, true),
		}))
	}
	sort.Strings(lines)
	h := c.v.sum(strings.Join(lines, ""))
	c.hashes[id] = h
	return h
}

type nDegreeResult struct {
	hash   string
	issuer *IdentifierIssuer
}

// resolveComplex runs Hash N-Degree Quads for every ambiguous group in hash
// order and commits the winning temporary issuers to the canonical issuer.
func (c *canonicalizer) resolveComplex(ctx context.Context, groups map[string][]string) error {
	if len(groups) == 0 {
		return nil
	}
	ctx, span := c.tracer.Start(ctx, "rdf.Canonicalize.complex",
		trace.WithAttributes(attribute.Int("rdf.ambiguous_groups", len(groups))))
	defer span.End()

	for _, h := range sortedHashes(groups) {
		var members []string
		for _, id := range groups[h] {
			if !c.issuer.HasID(id) {
				members = append(members, id)
			}
		}
		c.logger.DebugContext(ctx, "canonicalize: resolving group", "hash", h, "members", len(members))

		results, err := c.hashGroup(ctx, members)
		if err != nil {
			return err
		}
		slices.SortStableFunc(results, func(a, b nDegreeResult) int {
			return strings.Compare(a.hash, b.hash)
		})
		for _, r := range results {
			for _, id := range r.issuer.order {
				c.issuer.IssueID(id)
			}
		}
	}
	return nil
}

// hashGroup computes the N-degree result for each member. Members only read
// shared state, so they may run concurrently.
func (c *canonicalizer) hashGroup(ctx context.Context, members []string) ([]nDegreeResult, error) {
	results := make([]nDegreeResult, len(members))
	hashOne := func(i int) error {
		issuer := NewIdentifierIssuer(temporaryPrefix)
		issuer.IssueID(members[i])
		r, err := c.hashNDegreeQuads(ctx, members[i], issuer)
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	}

	if c.workers < 2 || len(members) < 2 {
		for i := range members {
			if err := hashOne(i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range members {
		g.Go(func() error {
			if err := checkContext(gctx); err != nil {
				return err
			}
			return hashOne(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *canonicalizer) hashNDegreeQuads(ctx context.Context, id string, issuer *IdentifierIssuer) (nDegreeResult, error) {
	related := c.hashToRelated(id, issuer)
	h := c.v.newHash()

	for _, relatedHash := range sortedHashes(related) {
		blankNodes := related[relatedHash]
		if limit := c.opts.MaxRelatedGroupSize; limit > 0 && len(blankNodes) > limit {
			return nDegreeResult{}, fmt.Errorf("%w: %d blank nodes related to _:%s (limit %d)",
				ErrPermutationLimit, len(blankNodes), id, limit)
		}
		h.Write([]byte(relatedHash))

		var chosenPath string
		var chosenIssuer *IdentifierIssuer
		for permutation := range permutations(blankNodes) {
			if err := checkContext(ctx); err != nil {
				return nDegreeResult{}, err
			}
			path, pathIssuer, ok, err := c.permutationPath(ctx, permutation, issuer, chosenPath)
			if err != nil {
				return nDegreeResult{}, err
			}
			if ok && (chosenIssuer == nil || path < chosenPath) {
				chosenPath = path
				chosenIssuer = pathIssuer
			}
		}
		h.Write([]byte(chosenPath))
		issuer = chosenIssuer
	}
	return nDegreeResult{hash: hexSum(h), issuer: issuer}, nil
}

// permutationPath builds the path for one ordering of related blank nodes.
// ok is false once the path can no longer beat chosen.
func (c *canonicalizer) permutationPath(ctx context.Context, permutation []string, issuer *IdentifierIssuer, chosen string) (string, *IdentifierIssuer, bool, error) {
	issuerCopy := issuer.Clone()
	worse := func(path string) bool {
		return chosen != "" && len(path) >= len(chosen) && path > chosen
	}

	var path strings.Builder
	var recursion []string
	for _, related := range permutation {
		if id, ok := c.issuer.Lookup(related); ok {
			path.WriteString(id)
		} else {
			if !issuerCopy.HasID(related) {
				recursion = append(recursion, related)
			}
			path.WriteString(issuerCopy.IssueID(related))
		}
		if worse(path.String()) {
			return "", nil, false, nil
		}
	}

	for _, related := range recursion {
		result, err := c.hashNDegreeQuads(ctx, related, issuerCopy)
		if err != nil {
			return "", nil, false, err
		}
		path.WriteString(issuerCopy.IssueID(related))
		path.WriteString("<" + result.hash + ">")
		issuerCopy = result.issuer
		if worse(path.String()) {
			return "", nil, false, nil
		}
	}
	return path.String(), issuerCopy, true, nil
}

// hashToRelated groups the blank nodes related to id by their related hash.
func (c *canonicalizer) hashToRelated(id string, issuer *IdentifierIssuer) map[string][]string {
	out := map[string][]string{}
	for _, i := range c.nodes[id] {
		q := c.quads[i]
		for _, r := range c.v.related(q, id) {
			h := c.hashRelatedBlankNode(r.id, q, issuer, r.position)
			out[h] = append(out[h], r.id)
		}
	}
	return out
}

func (c *canonicalizer) hashRelatedBlankNode(related string, q Quad, issuer *IdentifierIssuer, position string) string {
	id, ok := c.issuer.Lookup(related)
	if !ok {
		id, ok = issuer.Lookup(related)
	}
	if !ok {
		id = c.hashes[related]
	}
	if position == positionGraph {
		return c.v.sum(position, id)
	}
	return c.v.sum(position, c.v.relatedPredicate(q.P), id)
}

// relabel rewrites blank nodes with their canonical identifiers and sorts
// the quads by their N-Quads rendering.
func (c *canonicalizer) relabel() *Canonicalization {
	issued := make(map[string]string, len(c.nodes))
	for _, old := range c.issuer.order {
		id, _ := c.issuer.Lookup(old)
		issued[old] = strings.TrimPrefix(id, blankNodePrefix)
	}
	mapTerm := func(t Term) Term {
		if b, ok := t.(BlankNode); ok {
			return BlankNode{ID: issued[b.ID]}
		}
		return t
	}

	type line struct {
		text string
		quad Quad
	}
	lines := make([]line, len(c.quads))
	for i, q := range c.quads {
		nq := Quad{S: mapTerm(q.S), P: q.P, O: mapTerm(q.O), G: mapTerm(q.G)}
		lines[i] = line{text: FormatNQuad(nq), quad: nq}
	}
	slices.SortFunc(lines, func(a, b line) int { return strings.Compare(a.text, b.text) })

	out := &Canonicalization{Quads: make([]Quad, len(lines)), Issued: issued}
	for i, l := range lines {
		out.Quads[i] = l.quad
	}
	return out
}

func sortedHashes(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// permutations yields every ordering of items in lexicographic order of
// their positions. The yielded slice is reused between iterations.
func permutations(items []string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		idx := make([]int, len(items))
		for i := range idx {
			idx[i] = i
		}
		perm := make([]string, len(items))
		for {
			for i, j := range idx {
				perm[i] = items[j]
			}
			if !yield(perm) {
				return
			}
			if !nextPermutation(idx) {
				return
			}
		}
	}
}

func nextPermutation(idx []int) bool {
	i := len(idx) - 2
	for i >= 0 && idx[i] >= idx[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(idx) - 1
	for idx[j] <= idx[i] {
		j--
	}
	idx[i], idx[j] = idx[j], idx[i]
	slices.Reverse(idx[i+1:])
	return true
}
