package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "study-sync-client"

// HTTPClient is the resty client every remote call of the sync client goes
// through. resty's own retries stay off: failed writes are retried by the
// operation queue with its backoff schedule.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL. A zero timeout leaves
// requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &HTTPClient{Client: c}
}
