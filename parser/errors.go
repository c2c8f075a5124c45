package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/posh-lang/posh/lexer"
)

// Structural tree errors. These are sentinels so callers can branch on
// the failure mode with errors.Is.
var (
	// ErrBranchTaken means AddChild targeted a side that already holds a child.
	ErrBranchTaken = errors.New("branch already taken")

	// ErrNoBranch means a cursor move targeted a branch that does not exist.
	ErrNoBranch = errors.New("no such branch")

	// ErrNoCursor means the operation requires a cursor but the tree is empty.
	ErrNoCursor = errors.New("no cursor")
)

// Grammar driver errors.
var (
	// ErrNotImplemented marks a grammar production that is recognized but
	// not yet built out. Failing loudly here beats silently looping on an
	// unconsumed token.
	ErrNotImplemented = errors.New("production not implemented")

	// ErrNoTokens means the input produced nothing to parse.
	ErrNoTokens = errors.New("no tokens")
)

// ParseError provides detailed syntax error information with source context
type ParseError struct {
	Position   lexer.Position
	Message    string
	Context    string // Source line where the error occurred
	Expected   string
	Got        string
	Suggestion string

	wrapped error
}

func (e *ParseError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "syntax error at line %d, column %d: %s",
		e.Position.Line, e.Position.Column, e.Message)

	if e.Expected != "" {
		fmt.Fprintf(&b, "\n  expected: %s", e.Expected)
	}
	if e.Got != "" {
		fmt.Fprintf(&b, "\n  got:      %s", e.Got)
	}

	if e.Context != "" {
		b.WriteString("\n\n  ")
		b.WriteString(e.Context)
		b.WriteString("\n  ")
		if e.Position.Column > 1 {
			b.WriteString(strings.Repeat(" ", e.Position.Column-1))
		}
		b.WriteString("^")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n\n  suggestion: %s", e.Suggestion)
	}

	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.wrapped
}

// sourceLine extracts the line containing offset from the original input,
// for use as error context.
func sourceLine(input []byte, offset int) string {
	if offset > len(input) {
		offset = len(input)
	}
	start := offset
	for start > 0 && input[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(input) && input[end] != '\n' {
		end++
	}
	return string(input[start:end])
}
