package filter

import (
	"errors"
	"fmt"

	"github.com/ivoronin/gnssmask/internal/gnsstime"
)

var (
	// ErrUnrecognizedLiteral means no literal pattern matched.
	ErrUnrecognizedLiteral = errors.New("unrecognized literal")
	// ErrUnknownConstellationCode means a satellite ID starts with a letter missing from the tables.
	ErrUnknownConstellationCode = errors.New("unknown constellation code")
	// ErrInvalidDate means a date-time literal has out-of-range fields.
	ErrInvalidDate = gnsstime.ErrInvalidDate
	// ErrMalformedExpression means an expression could not be split into comparator and literal.
	ErrMalformedExpression = errors.New("malformed expression")
)

// ExprError reports a parse failure for one comma-separated token of an expression.
type ExprError struct {
	Index int    // zero-based token index
	Token string // offending token, trimmed
	Err   error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("filter %d %q: %v", e.Index, e.Token, e.Err)
}

func (e *ExprError) Unwrap() error { return e.Err }
