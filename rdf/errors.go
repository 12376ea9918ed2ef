package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedAlgorithm indicates an unknown canonicalization algorithm.
	ErrCodeUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	// ErrCodeUnsupportedFormat indicates an unknown output format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeConflictingIndex indicates two different @index values for one node.
	ErrCodeConflictingIndex ErrorCode = "CONFLICTING_INDEX"
	// ErrCodeInvalidNode indicates a malformed node in an expanded document.
	ErrCodeInvalidNode ErrorCode = "INVALID_NODE"
	// ErrCodePermutationLimit indicates a related blank node group exceeded the configured size.
	ErrCodePermutationLimit ErrorCode = "PERMUTATION_LIMIT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeInputTooLarge indicates JSON-LD input exceeded the configured size.
	ErrCodeInputTooLarge ErrorCode = "INPUT_TOO_LARGE"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled or timed out.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal is returned for errors that do not belong to any other class.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

var (
	// ErrUnsupportedAlgorithm indicates the algorithm name is not URDNA2015 or URGNA2012.
	ErrUnsupportedAlgorithm = errors.New("rdf: unsupported canonicalization algorithm")
	// ErrUnsupportedFormat indicates the format is not an N-Quads media type.
	ErrUnsupportedFormat = errors.New("rdf: unsupported format")
	// ErrConflictingIndex indicates a node carries two different @index values.
	ErrConflictingIndex = errors.New("rdf: conflicting @index property")
	// ErrInvalidNode indicates an expanded document contained a malformed node.
	ErrInvalidNode = errors.New("rdf: invalid node")
	// ErrPermutationLimit indicates a related blank node group is larger than allowed.
	ErrPermutationLimit = errors.New("rdf: related blank node group exceeds configured limit")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrInputTooLarge indicates JSON-LD input exceeded the configured size.
	ErrInputTooLarge = errors.New("rdf: input exceeds configured limit")
)

// Code returns the error code for an error.
// Returns empty string for nil errors or io.EOF (which is not an error condition).
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrCodeUnsupportedAlgorithm
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrConflictingIndex):
		return ErrCodeConflictingIndex
	case errors.Is(err, ErrInvalidNode):
		return ErrCodeInvalidNode
	case errors.Is(err, ErrPermutationLimit):
		return ErrCodePermutationLimit
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrInputTooLarge):
		return ErrCodeInputTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return ErrCodeParseError
	}
	return ErrCodeInternal
}

// NodeError identifies the node a node-map failure happened on.
type NodeError struct {
	Graph   string // graph name, "@default" for the default graph
	Subject string // subject identifier after blank node relabeling
	Err     error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s in graph %s: %v", e.Subject, e.Graph, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// ParseError provides structured context for N-Quads parse failures.
type ParseError struct {
	Format    string // Format name, "nquads"
	Statement string // Offending statement
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.formatExcerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

// formatExcerpt shows the statement around the error column with a caret.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column <= 0 {
		if len(e.Statement) > maxExcerptLen {
			return e.Statement[:maxExcerptLen] + "..."
		}
		return e.Statement
	}

	pos := e.Column - 1
	start := max(pos-contextLen, 0)
	end := min(pos+contextLen, len(e.Statement))
	if start > end {
		start = end
	}
	excerpt := e.Statement[start:end]
	caret := pos - start
	if start > 0 {
		excerpt = "..." + excerpt
		caret += 3
	}
	if end < len(e.Statement) {
		excerpt += "..."
	}
	caret = max(min(caret, len(excerpt)-1), 0)
	return excerpt + "\n  " + strings.Repeat(" ", caret) + "^"
}

func (e *ParseError) Unwrap() error { return e.Err }
