package lockfile

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyPath means the lockfile path could not be built as text.
	ErrEmptyPath = errors.New("lockfile path is empty")

	// ErrInvalidContent means the lockfile was read but is not UTF-8 text.
	ErrInvalidContent = errors.New("lockfile content is not valid UTF-8")

	// ErrTooFewFields means the lockfile had fewer than five colon separated fields.
	ErrTooFewFields = errors.New("too few fields")

	// ErrZeroPort means the port field parsed to 0.
	ErrZeroPort = errors.New("port must be greater than zero")
)

// ReadError is returned when the lockfile cannot be read. This is the usual
// failure while the client is still starting and has not written the file yet.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("unable to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a lockfile field is missing or is not a valid
// number. Field names the offending field.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrTooFewFields) {
		return fmt.Sprintf("unable to parse lockfile: %v, %s is missing", e.Err, e.Field)
	}
	return fmt.Sprintf("unable to parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
