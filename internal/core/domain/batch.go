package domain

import (
	"errors"
	"fmt"
)

// ItemError records the failure of one item in a bulk operation.
type ItemError struct {
	// Item names the failed item (file name or entity key).
	Item string

	// Err is the cause.
	Err error
}

// Error implements error.
func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

// Unwrap returns the cause.
func (e *ItemError) Unwrap() error {
	return e.Err
}

// BatchResult is the outcome of a bulk export or import.
// Items fail independently; a failure never aborts the remaining items.
type BatchResult struct {
	// Succeeded lists the items processed without error, in order.
	Succeeded []string

	// Failed lists the items that failed, in order.
	Failed []*ItemError
}

// Success records a processed item.
func (r *BatchResult) Success(item string) {
	r.Succeeded = append(r.Succeeded, item)
}

// Fail records a failed item.
func (r *BatchResult) Fail(item string, err error) {
	r.Failed = append(r.Failed, &ItemError{Item: item, Err: err})
}

// HasFailures reports whether any item failed.
func (r *BatchResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Err joins all item failures, or returns nil.
func (r *BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}
