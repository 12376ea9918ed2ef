package rdf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxLineBytes bounds a single N-Quads line unless overridden.
const DefaultMaxLineBytes = 1 << 20

// DecodeOptions configures the N-Quads decoder.
type DecodeOptions struct {
	// MaxLineBytes limits a single line. Zero uses DefaultMaxLineBytes, negative disables.
	MaxLineBytes int
	// AllowGeneralized accepts blank node predicates.
	AllowGeneralized bool
	// Context cancels decoding when done.
	Context context.Context
}

// DecodeOption configures decoder behavior using functional options.
type DecodeOption func(*DecodeOptions)

// WithMaxLineBytes sets the maximum line size limit.
func WithMaxLineBytes(maxBytes int) DecodeOption {
	return func(opts *DecodeOptions) {
		opts.MaxLineBytes = maxBytes
	}
}

// WithGeneralizedRDF accepts blank nodes in predicate position.
func WithGeneralizedRDF() DecodeOption {
	return func(opts *DecodeOptions) {
		opts.AllowGeneralized = true
	}
}

// WithDecodeContext sets the context for cancellation.
func WithDecodeContext(ctx context.Context) DecodeOption {
	return func(opts *DecodeOptions) {
		opts.Context = ctx
	}
}

// NQuadsDecoder is a pull-style N-Quads decoder.
type NQuadsDecoder struct {
	reader *bufio.Reader
	opts   DecodeOptions
	line   int
	err    error
}

// NewNQuadsDecoder creates an N-Quads decoder reading from r.
func NewNQuadsDecoder(r io.Reader, opts ...DecodeOption) *NQuadsDecoder {
	options := DecodeOptions{MaxLineBytes: DefaultMaxLineBytes}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxLineBytes == 0 {
		options.MaxLineBytes = DefaultMaxLineBytes
	}
	return &NQuadsDecoder{reader: bufio.NewReader(r), opts: options}
}

// Next returns the next quad, or io.EOF when the input is exhausted.
func (d *NQuadsDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for {
		if err := checkContext(d.opts.Context); err != nil {
			d.err = err
			return Quad{}, err
		}
		line, err := readLineWithLimit(d.reader, d.opts.MaxLineBytes)
		if err != nil {
			if err != io.EOF {
				err = &ParseError{Format: "nquads", Line: d.line + 1, Err: err}
			}
			d.err = err
			return Quad{}, err
		}
		d.line++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		quad, err := parseNQuadLine(trimmed, d.opts.AllowGeneralized)
		if err != nil {
			var cursorErr *cursorError
			column := 0
			if errors.As(err, &cursorErr) {
				column = cursorErr.pos + 1
			}
			d.err = &ParseError{Format: "nquads", Statement: trimmed, Line: d.line, Column: column, Err: err}
			return Quad{}, d.err
		}
		return quad, nil
	}
}

// Err returns the first non-EOF error seen by the decoder.
func (d *NQuadsDecoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// ParseNQuads reads every quad from r.
func ParseNQuads(ctx context.Context, r io.Reader, opts ...DecodeOption) ([]Quad, error) {
	dec := NewNQuadsDecoder(r, append([]DecodeOption{WithDecodeContext(ctx)}, opts...)...)
	var quads []Quad
	for {
		q, err := dec.Next()
		if err == io.EOF {
			return quads, nil
		}
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
}

// ParseNQuadsString is ParseNQuads over a string.
func ParseNQuadsString(ctx context.Context, input string, opts ...DecodeOption) ([]Quad, error) {
	return ParseNQuads(ctx, strings.NewReader(input), opts...)
}

func parseNQuadLine(line string, generalized bool) (Quad, error) {
	cursor := &nqCursor{input: line}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Quad{}, err
	}
	if _, ok := subject.(Literal); ok {
		return Quad{}, cursor.errorf("literal not allowed as subject")
	}
	predicate, err := cursor.parseTerm(false)
	if err != nil {
		return Quad{}, err
	}
	if isBlank(predicate) && !generalized {
		return Quad{}, cursor.errorf("blank node predicate requires generalized RDF")
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Quad{}, err
	}

	var graph Term
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '.' {
		graph, err = cursor.parseTerm(false)
		if err != nil {
			return Quad{}, err
		}
	}
	if !cursor.consume('.') {
		return Quad{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Quad{}, cursor.errorf("unexpected content after '.'")
	}
	return Quad{S: subject, P: predicate, O: object, G: graph}, nil
}

type cursorError struct {
	pos int
	msg string
}

func (e *cursorError) Error() string { return e.msg }

type nqCursor struct {
	input string
	pos   int
}

func (c *nqCursor) skipWS() {
	for c.pos < len(c.input) && (c.input[c.pos] == ' ' || c.input[c.pos] == '\t') {
		c.pos++
	}
}

func (c *nqCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *nqCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], blankNodePrefix):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token")
	}
}

func (c *nqCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		switch c.input[c.pos] {
		case ' ', '<', '"', '{', '}', '|', '^', '`':
			return IRI{}, c.errorf("invalid character %q in IRI", c.input[c.pos])
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value, err := unescapeString(c.input[start:c.pos])
	if err != nil {
		return IRI{}, c.errorf("%v", err)
	}
	c.pos++
	return IRI{Value: value}, nil
}

func (c *nqCursor) parseBlankNode() (BlankNode, error) {
	c.pos += len(blankNodePrefix)
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A label may contain '.' but cannot end with one.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *nqCursor) parseLiteral() (Literal, error) {
	c.pos++ // opening quote
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '"' {
		if c.input[c.pos] == '\\' {
			c.pos++
		}
		c.pos++
	}
	if c.pos >= len(c.input) {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical, err := unescapeString(c.input[start:c.pos])
	if err != nil {
		return Literal{}, c.errorf("%v", err)
	}
	c.pos++ // closing quote

	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		tagStart := c.pos
		for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
			c.pos++
		}
		tag := c.input[tagStart:c.pos]
		if !isValidLangTag(tag) {
			return Literal{}, c.errorf("invalid language tag %q", tag)
		}
		lang, dir := splitLangDirection(tag)
		return Literal{Lexical: lexical, Lang: lang, Direction: dir}, nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		if dt.Value == XSDString {
			dt = IRI{}
		}
		return Literal{Lexical: lexical, Datatype: dt}, nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *nqCursor) errorf(format string, args ...interface{}) error {
	return &cursorError{pos: c.pos, msg: fmt.Sprintf(format, args...)}
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '<', '"':
		return true
	default:
		return false
	}
}

// NQuadsEncoder writes quads as N-Quads lines.
type NQuadsEncoder struct {
	writer *bufio.Writer
	err    error
}

// NewNQuadsEncoder creates an encoder writing to w.
func NewNQuadsEncoder(w io.Writer) *NQuadsEncoder {
	return &NQuadsEncoder{writer: bufio.NewWriter(w)}
}

func (e *NQuadsEncoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if q.S == nil || q.P == nil || q.O == nil {
		return fmt.Errorf("nquads: missing statement fields")
	}
	_, err := e.writer.WriteString(FormatNQuad(q))
	if err != nil {
		e.err = err
	}
	return err
}

func (e *NQuadsEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *NQuadsEncoder) Close() error {
	return e.Flush()
}

// FormatNQuad renders one quad as an N-Quads line, newline included.
// This is the serialization used both for hashing and for canonical output.
func FormatNQuad(q Quad) string {
	var b strings.Builder
	writeNQuad(&b, q)
	return b.String()
}

func writeNQuad(b *strings.Builder, q Quad) {
	b.WriteString(renderTerm(q.S))
	b.WriteByte(' ')
	b.WriteString(renderTerm(q.P))
	b.WriteByte(' ')
	b.WriteString(renderTerm(q.O))
	if q.G != nil {
		b.WriteByte(' ')
		b.WriteString(renderTerm(q.G))
	}
	b.WriteString(" .\n")
}

// FormatNQuads renders quads in the given order.
func FormatNQuads(quads []Quad) string {
	var b strings.Builder
	for _, q := range quads {
		writeNQuad(&b, q)
	}
	return b.String()
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
)

func renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return "<" + value.Value + ">"
	case BlankNode:
		return value.String()
	case Literal:
		return renderLiteral(value)
	default:
		return ""
	}
}

func renderLiteral(l Literal) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(literalEscaper.Replace(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
		if l.Direction != "" {
			b.WriteString("--")
			b.WriteString(l.Direction)
		}
	case l.Datatype.Value != "" && l.Datatype.Value != XSDString:
		b.WriteString("^^<")
		b.WriteString(l.Datatype.Value)
		b.WriteByte('>')
	}
	return b.String()
}
