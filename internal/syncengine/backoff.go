package syncengine

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// retryDelay is the wait before attempt number retryCount+1:
// base, 2·base, 4·base, ... capped at limit. A non-positive base disables
// the delay.
func retryDelay(base, limit time.Duration, retryCount int) time.Duration {
	if base <= 0 || retryCount <= 0 {
		return 0
	}

	b := retry.NewExponential(base)
	if limit > 0 {
		b = retry.WithCappedDuration(limit, b)
	}

	var d time.Duration
	for range retryCount {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}
	return d
}
