package pipeline

import (
	"errors"
	"math/rand"
	"time"

	"github.com/dgallion1/docstruct/internal/layoutsvc"
	"github.com/dgallion1/docstruct/internal/vision"
)

// IsRetryable checks if an error is worth retrying. Both remote
// collaborators mark their transient failures with their own error type.
func IsRetryable(err error) bool {
	var layoutErr *layoutsvc.RetryableError
	var visionErr *vision.RetryableError
	return errors.As(err, &layoutErr) || errors.As(err, &visionErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
