package store

import "fmt"

// WriteError describes a failed write with enough context to report it:
// the table written to, the operation, and the payload that was rejected.
type WriteError struct {
	Collection string
	Operation  string
	Data       any
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
