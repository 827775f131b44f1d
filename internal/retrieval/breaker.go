package retrieval

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/crawler"
)

// ErrSiteSkipped replaces the scrape of a key once the site already failed
// with a network error inside the same aggregate.
var ErrSiteSkipped = errors.New("retrieval: site skipped after an earlier network failure")

type breakerKey struct{}

type breaker struct {
	scrapeCtx context.Context
	cancel    context.CancelFunc
	open      atomic.Bool
}

// WithBreaker marks ctx as one aggregate of many keys. The first network
// failure opens the breaker: in-flight scrapes are cancelled and the remaining
// keys go straight to the snapshot. A positive budget also caps the time all
// scrapes of the aggregate may take together. Call the returned func when the
// aggregate is done.
func WithBreaker(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	b := &breaker{}
	if budget > 0 {
		b.scrapeCtx, b.cancel = context.WithTimeout(ctx, budget)
	} else {
		b.scrapeCtx, b.cancel = context.WithCancel(ctx)
	}
	return context.WithValue(ctx, breakerKey{}, b), b.cancel
}

func breakerFrom(ctx context.Context) *breaker {
	b, _ := ctx.Value(breakerKey{}).(*breaker)
	return b
}

// guardedScrape is scrape behind the aggregate breaker, when ctx carries one.
// Table and layout failures are specific to one page and leave it closed.
func (c *Coordinator) guardedScrape(ctx context.Context, d catalog.Domain, category string, year int) (Result, error) {
	b := breakerFrom(ctx)
	if b == nil {
		return c.scrape(ctx, d, category, year)
	}
	if b.open.Load() {
		return Result{}, ErrSiteSkipped
	}

	res, err := c.scrape(b.scrapeCtx, d, category, year)
	if err != nil && crawler.KindOf(err) == crawler.KindNetwork && b.open.CompareAndSwap(false, true) {
		b.cancel()
	}
	return res, err
}
