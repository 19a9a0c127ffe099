package taskstore

import (
	"errors"
	"fmt"
)

// ErrMutationInFlight is returned when a mutation is requested for a
// task that already has an unconfirmed mutation in flight. The second
// request is rejected, not queued; the caller retries once the first
// resolves.
var ErrMutationInFlight = errors.New("mutation already in flight for task")

// OpKind identifies which store operation failed.
type OpKind string

const (
	OpFetch       OpKind = "FETCH_FAILED"
	OpCreate      OpKind = "CREATE_FAILED"
	OpUpdate      OpKind = "UPDATE_FAILED"
	OpDelete      OpKind = "DELETE_FAILED"
	OpSuggestions OpKind = "SUGGESTIONS_FAILED"
)

// OpError wraps a gateway failure with the store operation that hit it.
type OpError struct {
	Kind OpKind
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsOp reports whether err is an OpError of the given kind.
func IsOp(err error, kind OpKind) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Kind == kind
}
