package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aidaily-app/aidaily/internal/client/repositories/records"
	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/models"
)

// FeedSource produces news items from some external origin (RSS fetcher,
// export file, another tool). Fetching and parsing live outside the engine;
// the library only consumes the result.
type FeedSource interface {
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}

// DefaultSettings are seeded into a fresh installation if the keys are absent.
var DefaultSettings = map[string]string{
	"user_mode":         "ai_learner",
	"auto_sync_enabled": "false",
	"model_provider":    "local",
}

// LibraryService implements the local knowledge-base mutations. Every
// mutation stamps updated_at with the current time and mints a UUID for new
// records, which is all the sync engine needs: changed rows are found by
// timestamp, never by a dirty flag.
type LibraryService struct {
	records records.Repository
	now     func() time.Time
}

func NewLibraryService(r records.Repository) *LibraryService {
	return &LibraryService{records: r, now: time.Now}
}

// ImportFrom pulls items from a feed source and stores the ones not already
// present. Existing items (same id) are left alone so local edits survive.
func (s *LibraryService) ImportFrom(ctx context.Context, src FeedSource) (int, error) {
	items, err := src.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching feed: %w", err)
	}

	imported := 0
	for i := range items {
		item := items[i]
		if item.ID == "" {
			item.ID = models.NewID()
		} else if _, err := s.records.GetNewsByID(ctx, item.ID); err == nil {
			continue
		}
		item.UpdatedAt = s.now()
		if err := s.records.UpsertNews(ctx, &item); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (s *LibraryService) SaveNews(ctx context.Context, item *models.NewsItem) error {
	if item.ID == "" {
		item.ID = models.NewID()
	}
	item.UpdatedAt = s.now()
	return s.records.UpsertNews(ctx, item)
}

// SetStarred toggles the starred flag, the edit that most commonly travels
// between devices.
func (s *LibraryService) SetStarred(ctx context.Context, id string, starred bool) error {
	item, err := s.records.GetNewsByID(ctx, id)
	if err != nil {
		return err
	}
	item.Starred = starred
	item.UpdatedAt = s.now()
	return s.records.UpsertNews(ctx, item)
}

// DeleteNews soft-deletes a news item. The row stays behind as a tombstone
// so other devices observe the deletion.
func (s *LibraryService) DeleteNews(ctx context.Context, id string) error {
	item, err := s.records.GetNewsByID(ctx, id)
	if err != nil {
		return err
	}
	item.Deleted = true
	item.UpdatedAt = s.now()
	return s.records.UpsertNews(ctx, item)
}

func (s *LibraryService) AddConcept(ctx context.Context, newsID, term, definition string) (*models.Concept, error) {
	c := &models.Concept{
		ID:         models.NewID(),
		NewsID:     newsID,
		Term:       term,
		Definition: definition,
		UpdatedAt:  s.now(),
	}
	if err := s.records.UpsertConcept(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LibraryService) DeleteConcept(ctx context.Context, id string) error {
	c, err := s.records.GetConceptByID(ctx, id)
	if err != nil {
		return err
	}
	c.Deleted = true
	c.UpdatedAt = s.now()
	return s.records.UpsertConcept(ctx, c)
}

func (s *LibraryService) AddPhrase(ctx context.Context, newsID, text, note string) (*models.Phrase, error) {
	p := &models.Phrase{
		ID:        models.NewID(),
		NewsID:    newsID,
		Text:      text,
		Note:      note,
		UpdatedAt: s.now(),
	}
	if err := s.records.UpsertPhrase(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *LibraryService) DeletePhrase(ctx context.Context, id string) error {
	p, err := s.records.GetPhraseByID(ctx, id)
	if err != nil {
		return err
	}
	p.Deleted = true
	p.UpdatedAt = s.now()
	return s.records.UpsertPhrase(ctx, p)
}

func (s *LibraryService) SetSetting(ctx context.Context, key, value string) error {
	return s.records.UpsertSetting(ctx, &models.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	})
}

// SeedDefaults inserts the default settings that are missing. Present keys
// keep their value and timestamp.
func (s *LibraryService) SeedDefaults(ctx context.Context) error {
	for key, value := range DefaultSettings {
		_, err := s.records.GetSetting(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if err := s.SetSetting(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *LibraryService) ListNews(ctx context.Context, starredOnly bool) ([]models.NewsItem, error) {
	return s.records.ListNews(ctx, starredOnly)
}

func (s *LibraryService) ListConcepts(ctx context.Context) ([]models.Concept, error) {
	return s.records.ListConcepts(ctx)
}

func (s *LibraryService) ListPhrases(ctx context.Context) ([]models.Phrase, error) {
	return s.records.ListPhrases(ctx)
}

func (s *LibraryService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.records.ListSettings(ctx)
}
