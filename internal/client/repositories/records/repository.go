// Package records provides local SQLite storage for the four synced record
// kinds. Reads used by the sync engine include tombstones; list operations
// for the UI filter them out.
package records

import (
	"context"
	"time"

	"github.com/aidaily-app/aidaily/internal/models"
)

// Repository describes row-level access to the synced tables.
//
// Upserts write the record verbatim, including updated_at and deleted;
// deciding whether an incoming record should replace an existing one is the
// caller's job (see syncx.Resolve). Get operations return tombstones too,
// because the merge rule needs to compare against them.
type Repository interface {
	UpsertNews(ctx context.Context, item *models.NewsItem) error
	GetNewsByID(ctx context.Context, id string) (*models.NewsItem, error)
	NewsUpdatedSince(ctx context.Context, since time.Time) ([]models.NewsItem, error)
	ListNews(ctx context.Context, starredOnly bool) ([]models.NewsItem, error)

	UpsertConcept(ctx context.Context, c *models.Concept) error
	GetConceptByID(ctx context.Context, id string) (*models.Concept, error)
	ConceptsUpdatedSince(ctx context.Context, since time.Time) ([]models.Concept, error)
	ListConcepts(ctx context.Context) ([]models.Concept, error)

	UpsertPhrase(ctx context.Context, p *models.Phrase) error
	GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error)
	PhrasesUpdatedSince(ctx context.Context, since time.Time) ([]models.Phrase, error)
	ListPhrases(ctx context.Context) ([]models.Phrase, error)

	UpsertSetting(ctx context.Context, s *models.Setting) error
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	SettingsUpdatedSince(ctx context.Context, since time.Time) ([]models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
}
