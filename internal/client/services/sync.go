package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aidaily-app/aidaily/internal/client/client"
	"github.com/aidaily-app/aidaily/internal/client/repositories/metadata"
	"github.com/aidaily-app/aidaily/internal/client/repositories/records"
	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// Status is the coarse outcome of a sync round surfaced to the UI.
type Status string

const (
	StatusOK              Status = "ok"
	StatusPartial         Status = "partial"
	StatusError           Status = "error"
	StatusUnauthenticated Status = "unauthenticated"
)

// SyncResult summarizes one sync round.
type SyncResult struct {
	Status     Status
	Uploaded   int
	Downloaded int
	Rejected   int
}

// SyncStatus is the UI-facing view of the engine between rounds.
type SyncStatus struct {
	LastSyncTime time.Time
	LoggedIn     bool
	PendingLocal int
}

// SyncService orchestrates one sync round: collect local changes, upload
// them, download the server's changes since the watermark, merge them into
// the local store, and advance the watermark.
//
// The watermark (last_sync_time) only moves after both directions succeed,
// and it moves to the server's clock, not the client's, so clock skew between
// devices cannot silently lose updates. A failed or abandoned round therefore
// has no observable effect and is always safe to retry.
type SyncService struct {
	mu        sync.Mutex
	api       client.Client
	records   records.Repository
	metadata  metadata.Repository
	collector *Collector
	logger    logging.Logger
}

func NewSyncService(api client.Client, r records.Repository, m metadata.Repository, logger logging.Logger) *SyncService {
	return &SyncService{
		api:       api,
		records:   r,
		metadata:  m,
		collector: NewCollector(r),
		logger:    logger.With("module", "sync"),
	}
}

// Sync runs one full round. Concurrent calls on the same client serialize on
// an internal mutex: interleaved rounds could each capture a different
// watermark and double-count or miss changes.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.authToken(ctx)
	if err != nil {
		return &SyncResult{Status: StatusError}, err
	}
	if token == "" {
		// No session: abort before any network call.
		return &SyncResult{Status: StatusUnauthenticated}, common.ErrUnauthenticated
	}

	since, err := s.watermark(ctx)
	if err != nil {
		return &SyncResult{Status: StatusError}, err
	}

	cs, err := s.collector.CollectChanges(ctx, since)
	if err != nil {
		return &SyncResult{Status: StatusError}, err
	}

	up, err := s.api.Upload(ctx, token, cs)
	if err != nil {
		return &SyncResult{Status: StatusError}, fmt.Errorf("upload: %w", err)
	}

	down, err := s.api.Download(ctx, token, since)
	if err != nil {
		// Upload succeeded but the round is still incomplete: leave the
		// watermark untouched so the next round re-attempts both halves.
		// Re-uploading the same records is a no-op on the server.
		return &SyncResult{Status: StatusError}, fmt.Errorf("download: %w", err)
	}

	if err := s.applyChangeSet(ctx, &down.ChangeSet); err != nil {
		return &SyncResult{Status: StatusError}, fmt.Errorf("merge: %w", err)
	}

	if err := s.setWatermark(ctx, down.ServerTime); err != nil {
		return &SyncResult{Status: StatusError}, err
	}

	result := &SyncResult{
		Status:     StatusOK,
		Uploaded:   up.Accepted,
		Downloaded: down.Total(),
		Rejected:   up.Rejected,
	}
	if up.Rejected > 0 {
		result.Status = StatusPartial
	}

	s.logger.Info(ctx, "sync round finished",
		"status", string(result.Status),
		"uploaded", result.Uploaded,
		"downloaded", result.Downloaded,
		"rejected", result.Rejected)

	return result, nil
}

// Status reports the engine state for the UI: the watermark, whether a
// session exists, and how many local records are waiting to upload.
func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	token, err := s.authToken(ctx)
	if err != nil {
		return nil, err
	}
	since, err := s.watermark(ctx)
	if err != nil {
		return nil, err
	}
	cs, err := s.collector.CollectChanges(ctx, since)
	if err != nil {
		return nil, err
	}
	return &SyncStatus{
		LastSyncTime: since,
		LoggedIn:     token != "",
		PendingLocal: cs.Total(),
	}, nil
}

// applyChangeSet merges downloaded records into the local store with the
// same last-write-wins rule the server applies.
func (s *SyncService) applyChangeSet(ctx context.Context, cs *syncx.ChangeSet) error {
	for i := range cs.News {
		item := &cs.News[i]
		existing, err := s.records.GetNewsByID(ctx, item.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if existing != nil && syncx.Resolve(item.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
			continue
		}
		if err := s.records.UpsertNews(ctx, item); err != nil {
			return err
		}
	}

	for i := range cs.Concepts {
		c := &cs.Concepts[i]
		existing, err := s.records.GetConceptByID(ctx, c.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if existing != nil && syncx.Resolve(c.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
			continue
		}
		if err := s.records.UpsertConcept(ctx, c); err != nil {
			return err
		}
	}

	for i := range cs.Phrases {
		p := &cs.Phrases[i]
		existing, err := s.records.GetPhraseByID(ctx, p.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if existing != nil && syncx.Resolve(p.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
			continue
		}
		if err := s.records.UpsertPhrase(ctx, p); err != nil {
			return err
		}
	}

	for i := range cs.Settings {
		st := &cs.Settings[i]
		existing, err := s.records.GetSetting(ctx, st.Key)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if existing != nil && syncx.Resolve(st.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
			continue
		}
		if err := s.records.UpsertSetting(ctx, st); err != nil {
			return err
		}
	}

	return nil
}

func (s *SyncService) authToken(ctx context.Context) (string, error) {
	b, err := s.metadata.Get(ctx, metadata.KeyAuthToken)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// watermark returns the persisted last_sync_time, or the zero time for a
// client that has never completed a round.
func (s *SyncService) watermark(ctx context.Context) (time.Time, error) {
	b, err := s.metadata.Get(ctx, metadata.KeyLastSyncTime)
	if err != nil {
		return time.Time{}, err
	}
	if len(b) == 0 {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt last_sync_time %q: %w", b, err)
	}
	return t, nil
}

func (s *SyncService) setWatermark(ctx context.Context, t time.Time) error {
	return s.metadata.Set(ctx, metadata.KeyLastSyncTime, []byte(t.UTC().Format(time.RFC3339Nano)))
}
