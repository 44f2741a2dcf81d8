package ai

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable signals that the inference backend could not be
// reached. Callers that only structure and extract keep working without
// AI enrichment; only the operation that needed the model fails.
var ErrModelUnavailable = errors.New("inference model unavailable")

// RetryableError marks a transient model failure worth retrying.
type RetryableError struct {
	Op      string
	Message string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable %s error: %s", e.Op, e.Message)
}

// IsRetryable checks whether an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}
