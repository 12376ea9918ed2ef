package rdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNQuads_Terms(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/p> <http://example.org/o> .
_:b1 <http://example.org/p> "plain" <http://example.org/g> .
_:b1 <http://example.org/p> "chat"@fr .
_:b1 <http://example.org/p> "right"@ar--rtl .
_:b1 <http://example.org/p> "1"^^<http://www.w3.org/2001/XMLSchema#integer> _:g .
_:b1 <http://example.org/p> "s"^^<http://www.w3.org/2001/XMLSchema#string> .
# comment line

`
	quads, err := ParseNQuadsString(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, quads, 6)

	assert.Equal(t, IRI{Value: "http://example.org/s"}, quads[0].S)
	assert.Equal(t, IRI{Value: "http://example.org/o"}, quads[0].O)
	assert.Nil(t, quads[0].G)

	assert.Equal(t, BlankNode{ID: "b1"}, quads[1].S)
	assert.Equal(t, Literal{Lexical: "plain"}, quads[1].O)
	assert.Equal(t, IRI{Value: "http://example.org/g"}, quads[1].G)

	assert.Equal(t, Literal{Lexical: "chat", Lang: "fr"}, quads[2].O)
	assert.Equal(t, Literal{Lexical: "right", Lang: "ar", Direction: "rtl"}, quads[3].O)
	assert.Equal(t, RDFDirLangString, quads[3].O.(Literal).DatatypeIRI())

	assert.Equal(t, Literal{Lexical: "1", Datatype: IRI{Value: XSDInteger}}, quads[4].O)
	assert.Equal(t, BlankNode{ID: "g"}, quads[4].G)

	assert.Equal(t, Literal{Lexical: "s"}, quads[5].O, "xsd:string is the implicit datatype")
	assert.Equal(t, XSDString, quads[5].O.(Literal).DatatypeIRI())
}

func TestParseNQuads_Escapes(t *testing.T) {
	input := `<urn:s> <urn:p> "tab\there\nquote\" back\\ é \U0001F600 😀" .` + "\n"
	quads, err := ParseNQuadsString(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.Equal(t, "tab\there\nquote\" back\\ é 😀 😀", quads[0].O.(Literal).Lexical)
}

func TestParseNQuads_BlankNodeLabelBeforeDot(t *testing.T) {
	quads, err := ParseNQuadsString(context.Background(), "<urn:s> <urn:p> _:a.b.\n")
	require.NoError(t, err)
	require.Len(t, quads, 1)
	assert.Equal(t, BlankNode{ID: "a.b"}, quads[0].O)
}

func TestParseNQuads_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column int
	}{
		{"missing dot", `<urn:s> <urn:p> <urn:o>`, 24},
		{"literal subject", `"x" <urn:p> <urn:o> .`, 0},
		{"unterminated IRI", `<urn:s <urn:p> <urn:o> .`, 0},
		{"bad language tag", `<urn:s> <urn:p> "x"@1en .`, 0},
		{"bad direction", `<urn:s> <urn:p> "x"@en--up .`, 0},
		{"trailing content", `<urn:s> <urn:p> <urn:o> . <urn:x>`, 0},
		{"bad escape", `<urn:s> <urn:p> "\q" .`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNQuadsString(context.Background(), "<urn:a> <urn:b> <urn:c> .\n"+tt.input+"\n")
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.Equal(t, "nquads", parseErr.Format)
			assert.Equal(t, 2, parseErr.Line)
			assert.Equal(t, tt.input, parseErr.Statement)
			if tt.column > 0 {
				assert.Equal(t, tt.column, parseErr.Column)
			}
			assert.Equal(t, ErrCodeParseError, Code(err))
		})
	}
}

func TestParseNQuads_BlankPredicate(t *testing.T) {
	input := "<urn:s> _:p <urn:o> .\n"

	_, err := ParseNQuadsString(context.Background(), input)
	require.Error(t, err)

	quads, err := ParseNQuadsString(context.Background(), input, WithGeneralizedRDF())
	require.NoError(t, err)
	assert.Equal(t, BlankNode{ID: "p"}, quads[0].P)
}

func TestParseNQuads_LineTooLong(t *testing.T) {
	input := "<urn:s> <urn:p> \"" + strings.Repeat("x", 64) + "\" .\n"
	_, err := ParseNQuadsString(context.Background(), input, WithMaxLineBytes(32))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.Equal(t, ErrCodeLineTooLong, Code(err))

	_, err = ParseNQuadsString(context.Background(), input, WithMaxLineBytes(-1))
	assert.NoError(t, err)
}

func TestParseNQuads_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseNQuadsString(ctx, "<urn:s> <urn:p> <urn:o> .\n")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ErrCodeContextCanceled, Code(err))
}

func TestNQuadsDecoder_Next(t *testing.T) {
	dec := NewNQuadsDecoder(strings.NewReader("<urn:s> <urn:p> <urn:o> .\n<urn:s> <urn:p> \"x\" ."))

	q, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, IRI{Value: "urn:o"}, q.O)

	q, err = dec.Next()
	require.NoError(t, err, "last line without newline must parse")
	assert.Equal(t, Literal{Lexical: "x"}, q.O)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, dec.Err())
}

func TestFormatNQuad_Escaping(t *testing.T) {
	q := Quad{
		S: BlankNode{ID: "b0"},
		P: IRI{Value: "urn:p"},
		O: Literal{Lexical: "a\\b\tc\nd\re\"fé"},
		G: IRI{Value: "urn:g"},
	}
	assert.Equal(t, `_:b0 <urn:p> "a\\b\tc\nd\re\"fé" <urn:g> .`+"\n", FormatNQuad(q))
}

func TestFormatNQuad_Literals(t *testing.T) {
	tests := []struct {
		lit  Literal
		want string
	}{
		{Literal{Lexical: "x"}, `"x"`},
		{Literal{Lexical: "x", Datatype: IRI{Value: XSDString}}, `"x"`},
		{Literal{Lexical: "x", Lang: "en"}, `"x"@en`},
		{Literal{Lexical: "x", Lang: "en", Direction: "ltr"}, `"x"@en--ltr`},
		{Literal{Lexical: "1", Datatype: IRI{Value: XSDInteger}}, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.lit.String())
	}
}

func TestNQuadsRoundTrip(t *testing.T) {
	input := `_:b0 <urn:p> "a\\b\tc\nd\re\"f" <urn:g> .
<urn:s> <urn:p> "chat"@fr .
<urn:s> <urn:p> "1.0E0"^^<http://www.w3.org/2001/XMLSchema#double> _:g .
`
	quads, err := ParseNQuadsString(context.Background(), input)
	require.NoError(t, err)

	var buf bytes.Buffer
	enc := NewNQuadsEncoder(&buf)
	for _, q := range quads {
		require.NoError(t, enc.Write(q))
	}
	require.NoError(t, enc.Close())
	assert.Equal(t, input, buf.String())
	assert.Equal(t, input, FormatNQuads(quads))
}

func TestNQuadsEncoder_RejectsIncompleteQuad(t *testing.T) {
	enc := NewNQuadsEncoder(io.Discard)
	assert.Error(t, enc.Write(Quad{S: IRI{Value: "urn:s"}}))
}
