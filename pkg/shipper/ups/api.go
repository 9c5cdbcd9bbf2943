package ups

import (
	"context"
)

// APIClient posts a UPS XML request and returns the raw response body.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Commit sends body to url. A non-nil error means no carrier response
	// body was obtained.
	Commit(ctx context.Context, url string, body []byte) ([]byte, error)
}
