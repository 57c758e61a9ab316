package aggregator

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
)

// SourceTimeout bounds each source query. A slow source is skipped,
// never stalls the aggregate call.
const SourceTimeout = 2 * time.Second

// Source is one independent feed producer. AppliesTo gates by role so
// the aggregator is safe to call for any authenticated user; Fetch is
// a read-only projection over that source's tables.
type Source interface {
	Kind() SourceKind
	AppliesTo(user *models.User) bool
	Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error)
}

// Aggregator fans a feed request out to every applicable source,
// joins the results, and returns one feed sorted newest first.
// Source failures are isolated: a partial feed beats no feed.
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// New creates an Aggregator over the given sources
func New(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, timeout: SourceTimeout}
}

// Feed builds the user's aggregated feed. Each applicable source runs
// in its own goroutine under a per-source timeout; failures and
// timeouts are logged and skipped.
func (a *Aggregator) Feed(ctx context.Context, user *models.User) []FeedNotification {
	type result struct {
		kind  SourceKind
		items []FeedNotification
	}

	var wg sync.WaitGroup
	results := make(chan result, len(a.sources))

	for _, src := range a.sources {
		if !src.AppliesTo(user) {
			continue
		}
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			items, err := src.Fetch(sctx, user)
			if err != nil {
				log.Printf("aggregator: source %s skipped for user %d: %v", src.Kind(), user.ID, err)
				return
			}
			results <- result{kind: src.Kind(), items: items}
		}(src)
	}

	wg.Wait()
	close(results)

	var feed []FeedNotification
	for r := range results {
		feed = append(feed, r.items...)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed
}
