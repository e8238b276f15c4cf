package startup

import (
	"context"
	"fmt"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	CountNodes(ctx context.Context) (int64, error)
}

// SeedChecker probes the persistence layer: creates missing tables and
// reads how many nodes are stored.
type SeedChecker struct {
	store Store
	now   func() time.Time
}

func NewSeedChecker(store Store) *SeedChecker {
	return &SeedChecker{
		store: store,
		now:   time.Now,
	}
}

func (c *SeedChecker) Probe(ctx context.Context, attempt uint) ConnectionProbe {
	started := c.now()
	probe := ConnectionProbe{Attempt: attempt}

	count, err := c.check(ctx)
	probe.Elapsed = c.now().Sub(started)
	if err != nil {
		probe.Err = err
		return probe
	}
	probe.Count = count
	return probe
}

func (c *SeedChecker) check(ctx context.Context) (int64, error) {
	err := c.store.EnsureSchema(ctx)
	if err != nil {
		return 0, err
	}
	count, err := c.store.CountNodes(ctx)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("database returned negative node count %d", count)
	}
	return count, nil
}
