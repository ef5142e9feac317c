// Package services contains application services for the AI Daily client:
// change collection, the sync round, authentication, and local knowledge-base
// operations.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aidaily-app/aidaily/internal/client/repositories/records"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// Collector reads the local store and produces the set of records whose
// updated_at exceeds a watermark, tombstones included. It is a pure read:
// writes that land concurrently may or may not be picked up, which is fine
// because the next round collects them again.
type Collector struct {
	records records.Repository
}

func NewCollector(r records.Repository) *Collector {
	return &Collector{records: r}
}

// CollectChanges returns every local record with updated_at > since.
func (c *Collector) CollectChanges(ctx context.Context, since time.Time) (*syncx.ChangeSet, error) {
	cs := &syncx.ChangeSet{}

	var err error
	if cs.News, err = c.records.NewsUpdatedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("collecting news: %w", err)
	}
	if cs.Concepts, err = c.records.ConceptsUpdatedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("collecting concepts: %w", err)
	}
	if cs.Phrases, err = c.records.PhrasesUpdatedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("collecting phrases: %w", err)
	}
	if cs.Settings, err = c.records.SettingsUpdatedSince(ctx, since); err != nil {
		return nil, fmt.Errorf("collecting settings: %w", err)
	}

	return cs, nil
}
