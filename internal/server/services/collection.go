package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/dbx"
	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/server/archive"
	"github.com/dmitrijs2005/focustank/internal/server/cache"
	"github.com/dmitrijs2005/focustank/internal/server/models"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/focustank/internal/timex"
)

// CollectionService is the remote copy of each user's collection. Uploads
// replace the whole set; reads go through the cache.
type CollectionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	cacheTTL    time.Duration
	archive     archive.Archiver
	clock       timex.Clock
	log         logging.Logger
}

func NewCollectionService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, cacheTTL time.Duration,
	a archive.Archiver, clock timex.Clock, log logging.Logger) *CollectionService {
	return &CollectionService{
		db:          db,
		repomanager: m,
		cache:       c,
		cacheTTL:    cacheTTL,
		archive:     a,
		clock:       clock,
		log:         log.With("module", "collections"),
	}
}

// FetchAll returns every stored item of userID, possibly empty.
func (s *CollectionService) FetchAll(ctx context.Context, userID string) ([]api.Item, error) {
	key := cache.CollectionKey(userID)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var out []api.Item
		if err := json.Unmarshal(cached, &out); err == nil {
			return out, nil
		}
		s.log.Warn(ctx, "dropping undecodable cache entry", "user_id", userID)
		_ = s.cache.Delete(ctx, key)
	case !errors.Is(err, cache.ErrCacheMiss):
		s.log.Warn(ctx, "cache read failed", "user_id", userID, "error", err)
	}

	stored, err := s.repomanager.Items(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %v", common.ErrInternal, err)
	}

	out := make([]api.Item, 0, len(stored))
	for _, m := range stored {
		out = append(out, itemFromModel(m))
	}

	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
			s.log.Warn(ctx, "cache write failed", "user_id", userID, "error", err)
		}
	}
	return out, nil
}

// ReplaceAll makes items the complete collection of userID. Items not
// listed are deleted. Nothing changes when any item is invalid.
func (s *CollectionService) ReplaceAll(ctx context.Context, userID string, items []api.Item) (int, error) {
	rows, err := modelsFromItems(userID, items)
	if err != nil {
		return 0, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)
		if _, err := repo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return repo.InsertBatch(ctx, rows)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: replace items: %v", common.ErrInternal, err)
	}

	if err := s.cache.Delete(ctx, cache.CollectionKey(userID)); err != nil {
		s.log.Warn(ctx, "cache invalidation failed", "user_id", userID, "error", err)
	}

	s.archiveSnapshot(ctx, userID, items)

	s.log.Info(ctx, "collection replaced", "user_id", userID, "items", len(rows))
	return len(rows), nil
}

// archiveSnapshot never fails the upload; the database is the source of
// truth.
func (s *CollectionService) archiveSnapshot(ctx context.Context, userID string, items []api.Item) {
	body, err := json.Marshal(api.ReplaceAllRequest{UserID: userID, Items: items})
	if err != nil {
		s.log.Error(ctx, "encoding archive failed", "user_id", userID, "error", err)
		return
	}
	key, err := s.archive.Archive(ctx, userID, s.clock.Now(), body)
	if err != nil {
		s.log.Error(ctx, "archiving collection failed", "user_id", userID, "error", err)
		return
	}
	if key != "" {
		s.log.Debug(ctx, "collection archived", "user_id", userID, "key", key)
	}
}

func modelsFromItems(userID string, items []api.Item) ([]models.Item, error) {
	out := make([]models.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item without id", common.ErrInvalidArgument)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %s", common.ErrInvalidArgument, it.ID)
		}
		seen[it.ID] = struct{}{}

		c, err := it.Collected()
		if err != nil {
			return nil, fmt.Errorf("%w: item %s: %v", common.ErrInvalidArgument, it.ID, err)
		}
		out = append(out, models.Item{
			UserID:      userID,
			ID:          c.ID,
			ItemID:      c.ItemID,
			Rarity:      c.Rarity.String(),
			Size:        c.Size.String(),
			Name:        c.Name,
			CaughtAt:    c.CaughtAt,
			ModifiedAt:  c.ModifiedAt,
			Visible:     c.Visible,
			Exceptional: c.Exceptional,
		})
	}
	return out, nil
}

func itemFromModel(m models.Item) api.Item {
	return api.Item{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Rarity:      m.Rarity,
		Size:        m.Size,
		Name:        m.Name,
		CaughtAt:    m.CaughtAt.UTC(),
		ModifiedAt:  m.ModifiedAt.UTC(),
		Visible:     m.Visible,
		Exceptional: m.Exceptional,
	}
}
