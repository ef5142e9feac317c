package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/dbx"
	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/models"
	"github.com/aidaily-app/aidaily/internal/server/repositories/records"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memStore is an in-memory stand-in for the postgres records repository.
type memStore struct {
	mu       sync.Mutex
	news     map[string]models.NewsItem
	concepts map[string]models.Concept
	phrases  map[string]models.Phrase
	settings map[string]models.Setting // userID + "/" + key
}

func newMemStore() *memStore {
	return &memStore{
		news:     make(map[string]models.NewsItem),
		concepts: make(map[string]models.Concept),
		phrases:  make(map[string]models.Phrase),
		settings: make(map[string]models.Setting),
	}
}

func (m *memStore) GetNewsByID(_ context.Context, id string) (*models.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.news[id]; ok {
		return &item, nil
	}
	return nil, common.ErrNotFound
}

func (m *memStore) UpsertNews(_ context.Context, item *models.NewsItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.news[item.ID] = *item
	return nil
}

func (m *memStore) NewsUpdatedSince(_ context.Context, userID string, since time.Time) ([]models.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NewsItem
	for _, item := range m.news {
		if item.UserID == userID && item.UpdatedAt.After(since) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) NewsExists(_ context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.news[id]
	return ok && item.UserID == userID, nil
}

func (m *memStore) GetConceptByID(_ context.Context, id string) (*models.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.concepts[id]; ok {
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (m *memStore) UpsertConcept(_ context.Context, c *models.Concept) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concepts[c.ID] = *c
	return nil
}

func (m *memStore) ConceptsUpdatedSince(_ context.Context, userID string, since time.Time) ([]models.Concept, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Concept
	for _, c := range m.concepts {
		if c.UserID == userID && c.UpdatedAt.After(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) GetPhraseByID(_ context.Context, id string) (*models.Phrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.phrases[id]; ok {
		return &p, nil
	}
	return nil, common.ErrNotFound
}

func (m *memStore) UpsertPhrase(_ context.Context, p *models.Phrase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phrases[p.ID] = *p
	return nil
}

func (m *memStore) PhrasesUpdatedSince(_ context.Context, userID string, since time.Time) ([]models.Phrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Phrase
	for _, p := range m.phrases {
		if p.UserID == userID && p.UpdatedAt.After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetSetting(_ context.Context, userID, key string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[userID+"/"+key]; ok {
		return &s, nil
	}
	return nil, common.ErrNotFound
}

func (m *memStore) UpsertSetting(_ context.Context, s *models.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID+"/"+s.Key] = *s
	return nil
}

func (m *memStore) SettingsUpdatedSince(_ context.Context, userID string, since time.Time) ([]models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Setting
	for _, s := range m.settings {
		if s.UserID == userID && s.UpdatedAt.After(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

// newSyncService wires a SyncService over the memStore. The *sql.DB is a
// sqlmock handle that only serves transaction begin/commit/rollback; all row
// access goes through the store.
func newSyncService(t *testing.T, store *memStore) (*SyncService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.MatchExpectationsInOrder(false)

	svc := NewSyncService(db, testLogger())
	svc.repoFn = func(dbx.DBTX) records.Repository { return store }
	return svc, mock
}

func expectTxs(mock sqlmock.Sqlmock, commits, rollbacks int) {
	for i := 0; i < commits; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	for i := 0; i < rollbacks; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
}

func fixedTime(min int) time.Time {
	return time.Date(2025, 3, 1, 12, min, 0, 0, time.UTC)
}

func TestUpload_AcceptsNewRecordsAndStampsOwner(t *testing.T) {
	store := newMemStore()
	svc, mock := newSyncService(t, store)
	expectTxs(mock, 3, 0)

	cs := &syncx.ChangeSet{
		News:     []models.NewsItem{{ID: "n1", Title: "t", UpdatedAt: fixedTime(0)}},
		Concepts: []models.Concept{{ID: "c1", NewsID: "n1", Term: "x", UpdatedAt: fixedTime(0)}},
		Settings: []models.Setting{{Key: "user_mode", Value: "ai_learner", UpdatedAt: fixedTime(0)}},
	}

	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Accepted)
	assert.Zero(t, resp.Rejected)

	assert.Equal(t, "u1", store.news["n1"].UserID)
	assert.Equal(t, "u1", store.concepts["c1"].UserID)
	assert.Equal(t, "u1", store.settings["u1/user_mode"].UserID)
}

func TestUpload_LastWriteWins(t *testing.T) {
	store := newMemStore()
	store.news["n1"] = models.NewsItem{ID: "n1", Title: "stored", UserID: "u1", UpdatedAt: fixedTime(10)}

	svc, mock := newSyncService(t, store)
	expectTxs(mock, 2, 0)

	cs := &syncx.ChangeSet{News: []models.NewsItem{
		{ID: "n1", Title: "older", UpdatedAt: fixedTime(5)},
	}}
	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Accepted, "a stale record is processed, just not applied")
	assert.Equal(t, "stored", store.news["n1"].Title)

	cs = &syncx.ChangeSet{News: []models.NewsItem{
		{ID: "n1", Title: "newer", UpdatedAt: fixedTime(20)},
	}}
	_, err = svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, "newer", store.news["n1"].Title)
}

func TestUpload_Idempotent_EqualTimestampKeepsStored(t *testing.T) {
	store := newMemStore()
	stored := models.NewsItem{ID: "n1", Title: "stored", UserID: "u1", UpdatedAt: fixedTime(10)}
	store.news["n1"] = stored

	svc, mock := newSyncService(t, store)
	expectTxs(mock, 1, 0)

	cs := &syncx.ChangeSet{News: []models.NewsItem{{ID: "n1", Title: "replayed", UpdatedAt: fixedTime(10)}}}
	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, "stored", store.news["n1"].Title)
}

func TestUpload_ForeignOwner_RejectedWithoutFailingBatch(t *testing.T) {
	store := newMemStore()
	store.news["theirs"] = models.NewsItem{ID: "theirs", Title: "t", UserID: "other", UpdatedAt: fixedTime(0)}

	svc, mock := newSyncService(t, store)
	expectTxs(mock, 1, 2)

	cs := &syncx.ChangeSet{News: []models.NewsItem{
		{ID: "theirs", Title: "takeover", UpdatedAt: fixedTime(30)},
		{ID: "claimed", Title: "t", UserID: "someone-else", UpdatedAt: fixedTime(30)},
		{ID: "mine", Title: "t", UpdatedAt: fixedTime(30)},
	}}

	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Accepted)
	assert.Equal(t, 2, resp.Rejected)

	assert.Equal(t, "t", store.news["theirs"].Title, "foreign record untouched")
	assert.Equal(t, "u1", store.news["mine"].UserID)
}

func TestUpload_ConceptWithMissingNews_Rejected(t *testing.T) {
	store := newMemStore()
	svc, mock := newSyncService(t, store)
	expectTxs(mock, 2, 1)

	cs := &syncx.ChangeSet{
		News: []models.NewsItem{{ID: "n1", Title: "t", UpdatedAt: fixedTime(0)}},
		Concepts: []models.Concept{
			{ID: "ok", NewsID: "n1", Term: "x", UpdatedAt: fixedTime(0)},
			{ID: "orphan", NewsID: "missing", Term: "y", UpdatedAt: fixedTime(0)},
		},
	}

	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Accepted, "news first, so a same-batch reference resolves")
	assert.Equal(t, 1, resp.Rejected)

	_, hasOrphan := store.concepts["orphan"]
	assert.False(t, hasOrphan)
}

func TestUpload_StandalonePhraseWithoutNewsAllowed(t *testing.T) {
	store := newMemStore()
	svc, mock := newSyncService(t, store)
	expectTxs(mock, 1, 0)

	cs := &syncx.ChangeSet{Phrases: []models.Phrase{{ID: "p1", Text: "zero-shot", UpdatedAt: fixedTime(0)}}}
	resp, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Accepted)
}

func TestUpload_TombstoneReplacesLiveRecord(t *testing.T) {
	store := newMemStore()
	store.news["n1"] = models.NewsItem{ID: "n1", Title: "t", UserID: "u1", UpdatedAt: fixedTime(0)}

	svc, mock := newSyncService(t, store)
	expectTxs(mock, 1, 0)

	cs := &syncx.ChangeSet{News: []models.NewsItem{{ID: "n1", Title: "t", UpdatedAt: fixedTime(1), Deleted: true}}}
	_, err := svc.Upload(context.Background(), "u1", cs)
	require.NoError(t, err)
	assert.True(t, store.news["n1"].Deleted)
}

func TestDownload_ScopedToUserWithServerClock(t *testing.T) {
	store := newMemStore()
	store.news["mine"] = models.NewsItem{ID: "mine", UserID: "u1", UpdatedAt: fixedTime(10)}
	store.news["theirs"] = models.NewsItem{ID: "theirs", UserID: "u2", UpdatedAt: fixedTime(10)}
	store.news["old"] = models.NewsItem{ID: "old", UserID: "u1", UpdatedAt: fixedTime(1)}
	store.settings["u1/user_mode"] = models.Setting{UserID: "u1", Key: "user_mode", Value: "researcher", UpdatedAt: fixedTime(10)}

	svc, _ := newSyncService(t, store)
	now := fixedTime(59)
	svc.now = func() time.Time { return now }

	resp, err := svc.Download(context.Background(), "u1", fixedTime(5))
	require.NoError(t, err)

	require.Len(t, resp.News, 1)
	assert.Equal(t, "mine", resp.News[0].ID)
	require.Len(t, resp.Settings, 1)
	assert.True(t, resp.ServerTime.Equal(now))
}

func TestSync_TwoDevices_StarPropagates(t *testing.T) {
	store := newMemStore()
	svc, mock := newSyncService(t, store)
	expectTxs(mock, 2, 0)
	ctx := context.Background()

	// Device A creates the item and syncs.
	created := models.NewsItem{ID: "n1", Title: "GPT-5 released", UpdatedAt: fixedTime(0)}
	_, err := svc.Upload(ctx, "u1", &syncx.ChangeSet{News: []models.NewsItem{created}})
	require.NoError(t, err)

	// Device B pulls it, stars it, and uploads the edit.
	down, err := svc.Download(ctx, "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, down.News, 1)

	starred := down.News[0]
	starred.Starred = true
	starred.UpdatedAt = fixedTime(5)
	_, err = svc.Upload(ctx, "u1", &syncx.ChangeSet{News: []models.NewsItem{starred}})
	require.NoError(t, err)

	// Device A downloads since its last round and sees the starred version.
	down, err = svc.Download(ctx, "u1", fixedTime(1))
	require.NoError(t, err)
	require.Len(t, down.News, 1)
	assert.True(t, down.News[0].Starred)
}
