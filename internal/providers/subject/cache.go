// Package subject decorates the subject data provider with caching. Subject
// attributes change rarely while a job reads them once per start, so a short
// TTL cache spares the backing store without risking stale prompts.
package subject

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"shotforge/internal/domain"
)

// Cached wraps a SubjectProvider with a TTL cache.
type Cached struct {
	inner domain.SubjectProvider
	cache *gocache.Cache
}

// NewCached builds the caching decorator. Entries expire after ttl and are
// swept at twice that interval.
func NewCached(inner domain.SubjectProvider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetSubject returns the cached subject or falls through to the provider.
// Lookup errors are never cached.
func (c *Cached) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	if cached, ok := c.cache.Get(id); ok {
		if subj, ok := cached.(*domain.Subject); ok {
			return subj, nil
		}
	}
	subj, err := c.inner.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(id, subj)
	return subj, nil
}

var _ domain.SubjectProvider = (*Cached)(nil)
