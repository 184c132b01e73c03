package httpx

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is returned when transient failures persist past the
// retry budget.
var ErrRetriesExhausted = errors.New("RETRIES_EXHAUSTED")

// SourceError is a definitive non-retryable failure from a platform:
// any non-2xx status other than 429. It is never retried because it
// signals a non-transient problem (bad request, blocked, gone).
type SourceError struct {
	Status int
	URL    string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source returned HTTP %d for %s", e.Status, e.URL)
}
