package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{io.EOF, ""},
		{fmt.Errorf("wrapped: %w", ErrUnsupportedAlgorithm), ErrCodeUnsupportedAlgorithm},
		{ErrUnsupportedFormat, ErrCodeUnsupportedFormat},
		{&NodeError{Graph: DefaultGraph, Subject: "urn:s", Err: ErrConflictingIndex}, ErrCodeConflictingIndex},
		{ErrInvalidNode, ErrCodeInvalidNode},
		{ErrPermutationLimit, ErrCodePermutationLimit},
		{ErrLineTooLong, ErrCodeLineTooLong},
		{ErrInputTooLarge, ErrCodeInputTooLarge},
		{context.DeadlineExceeded, ErrCodeContextCanceled},
		{&ParseError{Format: "nquads", Err: errors.New("bad")}, ErrCodeParseError},
		{errors.New("other"), ErrCodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), "Code(%v)", tt.err)
	}
}

func TestNodeError(t *testing.T) {
	err := &NodeError{Graph: "urn:g", Subject: "_:b0", Err: ErrConflictingIndex}
	assert.Equal(t, "node _:b0 in graph urn:g: rdf: conflicting @index property", err.Error())
	assert.ErrorIs(t, err, ErrConflictingIndex)
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{
		Format:    "nquads",
		Statement: `<urn:s> <urn:p> <urn:o>`,
		Line:      3,
		Column:    24,
		Err:       errors.New("missing '.'"),
	}
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "nquads:3:24: missing '.'"), msg)
	assert.Contains(t, msg, "<urn:s> <urn:p> <urn:o>\n  "+strings.Repeat(" ", 22)+"^")

	noPos := &ParseError{Format: "nquads", Err: errors.New("bad")}
	assert.Equal(t, "nquads: bad", noPos.Error())
}

func TestParseError_LongStatementExcerpt(t *testing.T) {
	stmt := strings.Repeat("a", 100) + "!" + strings.Repeat("b", 100)
	err := &ParseError{Format: "nquads", Statement: stmt, Line: 1, Column: 101, Err: errors.New("bad")}
	excerpt := err.formatExcerpt()
	lines := strings.Split(excerpt, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "..."))
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	caret := strings.Index(lines[1], "^") - 2
	assert.Equal(t, byte('!'), lines[0][caret])
}
