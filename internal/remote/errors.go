package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the remote store does not know the id.
var ErrNotFound = errors.New("remote: booking not found")

// RejectedError is a 4xx answer: the store is up but refused the input.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("remote rejected request (%d): %s", e.Status, e.Message)
}

// UnavailableError wraps transport failures, 5xx answers and malformed envelopes.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "remote unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func unavailable(format string, args ...any) error {
	return &UnavailableError{Err: fmt.Errorf(format, args...)}
}

// Outcome classifies the result of one remote call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRejected
	OutcomeNotFound
	OutcomeUnreachable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unreachable"
	}
}

// Classify maps an error returned by Client to an Outcome.
// Any error the client did not produce itself counts as unreachable.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	var rej *RejectedError
	if errors.As(err, &rej) {
		return OutcomeRejected
	}
	return OutcomeUnreachable
}
