package formula

import (
	"errors"
	"fmt"
)

// SyntaxError reports formula text that does not match the grammar.
type SyntaxError struct {
	Pos     int    // byte offset of the offending token
	Line    int    // 1-based
	Column  int    // 1-based, in bytes
	Token   string // offending token text, empty at end of input
	Message string
}

func (e *SyntaxError) Error() string {
	near := "at end of input"
	if e.Token != "" {
		near = fmt.Sprintf("near %q", e.Token)
	}
	return fmt.Sprintf("syntax error at %d:%d %s: %s", e.Line, e.Column, near, e.Message)
}

// IsSyntaxError returns true if err is or wraps a SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// newSyntaxError builds a SyntaxError for the token at pos in src.
func newSyntaxError(src string, pos int, token, message string) *SyntaxError {
	line, col := 1, 1
	for i := 0; i < pos && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return &SyntaxError{Pos: pos, Line: line, Column: col, Token: token, Message: message}
}
