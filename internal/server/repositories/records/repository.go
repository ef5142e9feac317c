// Package records stores the synced knowledge-base records for all users.
package records

import (
	"context"
	"time"

	"github.com/aidaily-app/aidaily/internal/models"
)

// Repository is the server-side store for syncable records. Upserts write the
// given record verbatim, including tombstones; the merge decision belongs to
// the sync service. Reads by id return tombstones too, since the merge rule
// needs the stored updated_at regardless of deletion state.
//
// UpdatedSince queries are scoped to one user and return records with
// updated_at strictly greater than since.
type Repository interface {
	GetNewsByID(ctx context.Context, id string) (*models.NewsItem, error)
	UpsertNews(ctx context.Context, item *models.NewsItem) error
	NewsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.NewsItem, error)
	// NewsExists reports whether a live or tombstoned news row with the given
	// id belongs to userID. Used for the referential check on concepts and
	// phrases.
	NewsExists(ctx context.Context, userID, id string) (bool, error)

	GetConceptByID(ctx context.Context, id string) (*models.Concept, error)
	UpsertConcept(ctx context.Context, c *models.Concept) error
	ConceptsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Concept, error)

	GetPhraseByID(ctx context.Context, id string) (*models.Phrase, error)
	UpsertPhrase(ctx context.Context, p *models.Phrase) error
	PhrasesUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Phrase, error)

	GetSetting(ctx context.Context, userID, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, s *models.Setting) error
	SettingsUpdatedSince(ctx context.Context, userID string, since time.Time) ([]models.Setting, error)
}
