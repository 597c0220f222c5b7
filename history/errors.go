package history

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is returned if a record lacks a field that is required
	// for a transition or a field has an invalid value.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrJobAbandoned is returned if the job has been killed or has failed.
	// No summary is available for such a job.
	ErrJobAbandoned = errors.New("job abandoned")

	// ErrAttemptInconsistency is returned if the start and finish times of the
	// map attempts don't match up, e.g. because the file is truncated.
	ErrAttemptInconsistency = errors.New("inconsistent map attempts")
)

// ParseError describes an error in a history file.
type ParseError struct {
	// Name of the history file
	Name string

	// Line is the line number the error occured in. It is 0 for errors
	// that are detected after the whole file has been read.
	Line int

	// Reason is a human readable description
	Reason string

	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Name, e.Line, e.Err, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", e.Name, e.Err, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
