package procnet

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrShortRow is returned when a data row has fewer than MinColumns tokens.
	ErrShortRow = errors.New("too few columns")
	// ErrMissingPort is returned when an endpoint column has no ":port" half.
	ErrMissingPort = errors.New("missing port separator")
)

// Field names the part of a row that failed to decode.
type Field string

const (
	FieldRow           Field = "row"
	FieldLocal         Field = "local"
	FieldRemote        Field = "remote"
	FieldLocalAddress  Field = "local_address"
	FieldLocalPort     Field = "local_port"
	FieldRemoteAddress Field = "remote_address"
	FieldRemotePort    Field = "remote_port"
	FieldState         Field = "state"
	FieldUID           Field = "uid"
)

// FormatError reports a token with the wrong length or an invalid digit
// for its radix.
type FormatError struct {
	Token string
	Want  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid token %q: want %s", e.Token, e.Want)
}

// DecodeError reports a row that could not be turned into an Entry.
//
// Err is a *FormatError, a *strconv.NumError, ErrShortRow or
// ErrMissingPort. Line is 1-based and counts the header; it is zero when
// the row was decoded outside of Parse.
type DecodeError struct {
	Line  int
	Field Field
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: decode %s %q: %v", e.Line, e.Field, e.Token, e.Err)
	}
	return fmt.Sprintf("decode %s %q: %v", e.Field, e.Token, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError reports a failure of the line source. Err is the reader's error
// as returned.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return "read table: " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }
