package subject

import (
	"context"
	"errors"
	"testing"
	"time"

	"shotforge/internal/domain"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Subject{ID: id, Name: "Alice"}, nil
}

func TestCachedServesFromCache(t *testing.T) {
	inner := &countingProvider{}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	first, err := c.GetSubject(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GetSubject(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("provider called %d times, want 1", inner.calls)
	}
	if first.ID != second.ID {
		t.Error("cache returned a different subject")
	}

	if _, err := c.GetSubject(ctx, "bob"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("provider called %d times after second id, want 2", inner.calls)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("db down")}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	if _, err := c.GetSubject(ctx, "alice"); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	if _, err := c.GetSubject(ctx, "alice"); err != nil {
		t.Fatalf("recovered provider still failing through cache: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("provider called %d times, want 2 (errors never cached)", inner.calls)
	}
}
