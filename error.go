package tabpool

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// defined errors for uniform error handling.

var (
	ErrUnknownLabel   = errors.New("unknown label")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrNilPage        = errors.New("nil page")
)

// wrap wraps an error with given topic, such that the type of error to be consistent.
func wrap(err error, topic string) error {
	return fmt.Errorf("%w, %+v", replaceAbortedError(err), topic)
}

func replaceAbortedError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "ABORTED") {
		return context.Canceled
	}
	return err
}

// IsKnownError reports whether err is one of the errors this package defines,
// or a cancellation.
func IsKnownError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnknownLabel) ||
		errors.Is(err, ErrDuplicateLabel) ||
		errors.Is(err, ErrNilPage) ||
		errors.Is(err, context.Canceled)
}
