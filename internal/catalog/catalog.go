// Package catalog holds the shot template catalog: the validated, read-only
// collection of reference shot definitions the pipeline iterates. The
// catalog is injected everywhere it is consumed so tests can substitute
// fixture sets without shared state.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"shotforge/internal/domain"
)

// CorePriorityCutoff defines the core set: every template with priority at
// or below this value is part of the fixed minimum coverage a core-set job
// always runs in full.
const CorePriorityCutoff = 3

// InMemory is the default ShotCatalog implementation. Templates are
// validated once at construction and never mutated, so reads need no
// locking.
type InMemory struct {
	templates []domain.ShotTemplate
	byID      map[string]domain.ShotTemplate
}

// NewInMemory validates the given templates and builds a catalog. Duplicate
// ids and range violations are rejected with ErrInvalidShot. Templates are
// kept sorted by priority, then id, so listings are deterministic.
func NewInMemory(templates []domain.ShotTemplate) (*InMemory, error) {
	byID := make(map[string]domain.ShotTemplate, len(templates))
	sorted := make([]domain.ShotTemplate, 0, len(templates))
	for _, tpl := range templates {
		if err := tpl.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byID[tpl.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidShot, tpl.ID)
		}
		byID[tpl.ID] = tpl
		sorted = append(sorted, tpl)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &InMemory{templates: sorted, byID: byID}, nil
}

// List returns the templates matching the filter, ordered by priority.
func (c *InMemory) List(ctx context.Context, filter domain.ShotFilter) ([]domain.ShotTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.ShotTemplate
	for _, tpl := range c.templates {
		if matches(tpl, filter) {
			out = append(out, tpl)
		}
	}
	return out, nil
}

// Get returns the template with the given id or domain.ErrNotFound.
func (c *InMemory) Get(ctx context.Context, id string) (domain.ShotTemplate, error) {
	if err := ctx.Err(); err != nil {
		return domain.ShotTemplate{}, err
	}
	tpl, ok := c.byID[id]
	if !ok {
		return domain.ShotTemplate{}, fmt.Errorf("shot template %q: %w", id, domain.ErrNotFound)
	}
	return tpl, nil
}

// CoreSet returns the fixed highest-priority subset. Core-set jobs run this
// in full regardless of optional filters, which guarantees reproducible
// minimum coverage per subject.
func (c *InMemory) CoreSet(ctx context.Context) ([]domain.ShotTemplate, error) {
	return c.List(ctx, domain.ShotFilter{MaxPriority: CorePriorityCutoff})
}

// Size returns the number of templates in the catalog.
func (c *InMemory) Size() int {
	return len(c.templates)
}

func matches(tpl domain.ShotTemplate, f domain.ShotFilter) bool {
	if len(f.IDs) > 0 && !containsString(f.IDs, tpl.ID) {
		return false
	}
	if len(f.Crops) > 0 && !containsCrop(f.Crops, tpl.Crop) {
		return false
	}
	if len(f.Angles) > 0 && !containsAngle(f.Angles, tpl.Angle) {
		return false
	}
	if f.SceneType != "" && !tpl.MatchesScene(f.SceneType) {
		return false
	}
	if f.MaxPriority > 0 && tpl.Priority > f.MaxPriority {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsCrop(list []domain.Crop, v domain.Crop) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsAngle(list []domain.Angle, v domain.Angle) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var _ domain.ShotCatalog = (*InMemory)(nil)
