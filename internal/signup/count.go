package signup

import (
	"context"

	"github.com/yanizio/waitlist/internal/logger"
	"github.com/yanizio/waitlist/internal/metrics"
)

// DisplayCount returns base plus the stored signup count.  A failed or
// negative count contributes zero so the page always renders.
func DisplayCount(ctx context.Context, c Counter, base int) int {
	if c == nil {
		return base
	}
	n, err := c.Count(ctx)
	if err != nil {
		metrics.CountErrorsTotal.Inc()
		logger.FromContext(ctx).Warnw("waitlist count unavailable", "err", err)
		return base
	}
	if n < 0 {
		n = 0
	}
	return base + n
}
