package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/aidaily-app/aidaily/internal/common"
	"github.com/aidaily-app/aidaily/internal/dbx"
	"github.com/aidaily-app/aidaily/internal/logging"
	"github.com/aidaily-app/aidaily/internal/server/repositories/records"
	"github.com/aidaily-app/aidaily/internal/syncx"
)

// repoFactory builds a records repository over a DBTX, so each record can be
// merged inside its own transaction.
type repoFactory func(db dbx.DBTX) records.Repository

// SyncService implements the server half of the sync protocol: accept a batch
// of client changes record by record, and serve the changes a client has not
// seen yet.
//
// Requests for the same user serialize on a per-user mutex. Two devices of one
// user syncing at once would otherwise interleave their reads and writes;
// different users never contend.
type SyncService struct {
	db     *sql.DB
	repoFn repoFactory
	logger logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSyncService(db *sql.DB, logger logging.Logger) *SyncService {
	return &SyncService{
		db:     db,
		repoFn: func(d dbx.DBTX) records.Repository { return records.NewPostgresRepository(d) },
		logger: logger.With("module", "sync"),
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *SyncService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Upload merges the client's change set into the store with last-write-wins
// semantics. Each record is merged in its own transaction and counted as
// accepted or rejected; a rejected record (foreign owner, missing news
// reference) never fails the batch. Storage errors do fail the batch, and the
// client is expected to retry the whole round.
//
// News items are merged before concepts and phrases so a batch can introduce
// a news item together with its annotations.
func (s *SyncService) Upload(ctx context.Context, userID string, cs *syncx.ChangeSet) (*syncx.UploadResponse, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	resp := &syncx.UploadResponse{}

	for i := range cs.News {
		item := cs.News[i]
		if err := s.mergeOne(ctx, func(ctx context.Context, repo records.Repository) error {
			if item.UserID != "" && item.UserID != userID {
				return common.ErrForeignOwner
			}
			existing, err := repo.GetNewsByID(ctx, item.ID)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil {
				if existing.UserID != userID {
					return common.ErrForeignOwner
				}
				if syncx.Resolve(item.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
					return nil
				}
			}
			item.UserID = userID
			return repo.UpsertNews(ctx, &item)
		}, resp); err != nil {
			return nil, err
		}
	}

	for i := range cs.Concepts {
		c := cs.Concepts[i]
		if err := s.mergeOne(ctx, func(ctx context.Context, repo records.Repository) error {
			if c.UserID != "" && c.UserID != userID {
				return common.ErrForeignOwner
			}
			if c.NewsID != "" {
				ok, err := repo.NewsExists(ctx, userID, c.NewsID)
				if err != nil {
					return err
				}
				if !ok {
					return common.ErrMissingNewsItem
				}
			}
			existing, err := repo.GetConceptByID(ctx, c.ID)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil {
				if existing.UserID != userID {
					return common.ErrForeignOwner
				}
				if syncx.Resolve(c.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
					return nil
				}
			}
			c.UserID = userID
			return repo.UpsertConcept(ctx, &c)
		}, resp); err != nil {
			return nil, err
		}
	}

	for i := range cs.Phrases {
		p := cs.Phrases[i]
		if err := s.mergeOne(ctx, func(ctx context.Context, repo records.Repository) error {
			if p.UserID != "" && p.UserID != userID {
				return common.ErrForeignOwner
			}
			if p.NewsID != "" {
				ok, err := repo.NewsExists(ctx, userID, p.NewsID)
				if err != nil {
					return err
				}
				if !ok {
					return common.ErrMissingNewsItem
				}
			}
			existing, err := repo.GetPhraseByID(ctx, p.ID)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil {
				if existing.UserID != userID {
					return common.ErrForeignOwner
				}
				if syncx.Resolve(p.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
					return nil
				}
			}
			p.UserID = userID
			return repo.UpsertPhrase(ctx, &p)
		}, resp); err != nil {
			return nil, err
		}
	}

	for i := range cs.Settings {
		st := cs.Settings[i]
		if err := s.mergeOne(ctx, func(ctx context.Context, repo records.Repository) error {
			existing, err := repo.GetSetting(ctx, userID, st.Key)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if existing != nil && syncx.Resolve(st.UpdatedAt, existing.UpdatedAt) == syncx.Keep {
				return nil
			}
			st.UserID = userID
			return repo.UpsertSetting(ctx, &st)
		}, resp); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "upload merged",
		"user_id", userID,
		"accepted", resp.Accepted,
		"rejected", resp.Rejected)

	return resp, nil
}

// mergeOne runs fn in its own transaction and classifies the outcome.
// Rejections roll the transaction back and bump the rejected counter; any
// other error aborts the batch.
func (s *SyncService) mergeOne(ctx context.Context, fn func(ctx context.Context, repo records.Repository) error, resp *syncx.UploadResponse) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repoFn(tx))
	})
	if err != nil {
		if errors.Is(err, common.ErrForeignOwner) || errors.Is(err, common.ErrMissingNewsItem) {
			resp.Rejected++
			return nil
		}
		return err
	}
	resp.Accepted++
	return nil
}

// Download returns every record of userID updated strictly after since,
// tombstones included, plus the server clock. The clock is captured before
// the queries run: a record written while the queries are in flight may be
// missed by them, and a timestamp taken afterwards would let the client's
// next watermark skip it forever.
func (s *SyncService) Download(ctx context.Context, userID string, since time.Time) (*syncx.DownloadResponse, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	serverTime := s.now().UTC()
	repo := s.repoFn(s.db)

	news, err := repo.NewsUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	concepts, err := repo.ConceptsUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	phrases, err := repo.PhrasesUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	settings, err := repo.SettingsUpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &syncx.DownloadResponse{
		ChangeSet: syncx.ChangeSet{
			News:     news,
			Concepts: concepts,
			Phrases:  phrases,
			Settings: settings,
		},
		ServerTime: serverTime,
	}, nil
}
