package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/focustank/internal/commitment"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/dbx"
)

// GetString returns "" for a missing key.
func GetString(ctx context.Context, r Repository, key common.MetadataKey) (string, error) {
	v, err := r.Get(ctx, string(key))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func SetString(ctx context.Context, r Repository, key common.MetadataKey, v string) error {
	return r.Set(ctx, string(key), []byte(v))
}

// GetInt returns 0 for a missing key.
func GetInt(ctx context.Context, r Repository, key common.MetadataKey) (int64, error) {
	v, err := r.Get(ctx, string(key))
	if err != nil || v == nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("metadata[%s] is not an integer: %w", key, err)
	}
	return n, nil
}

func SetInt(ctx context.Context, r Repository, key common.MetadataKey, n int64) error {
	return r.Set(ctx, string(key), []byte(strconv.FormatInt(n, 10)))
}

// AddInt adds delta to the stored counter.
func AddInt(ctx context.Context, r Repository, key common.MetadataKey, delta int64) (int64, error) {
	n, err := GetInt(ctx, r, key)
	if err != nil {
		return 0, err
	}
	n += delta
	return n, SetInt(ctx, r, key, n)
}

// GetTime returns the zero time for a missing key.
func GetTime(ctx context.Context, r Repository, key common.MetadataKey) (time.Time, error) {
	v, err := r.Get(ctx, string(key))
	if err != nil || v == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("metadata[%s] is not a time: %w", key, err)
	}
	return t, nil
}

func SetTime(ctx context.Context, r Repository, key common.MetadataKey, t time.Time) error {
	return r.Set(ctx, string(key), []byte(t.UTC().Format(time.RFC3339Nano)))
}

// CommitmentStore keeps the active commitment record in the metadata table.
// The kind and start keys are always written and cleared together.
type CommitmentStore struct {
	db *sql.DB
}

func NewCommitmentStore(db *sql.DB) *CommitmentStore {
	return &CommitmentStore{db: db}
}

var _ commitment.RecordStore = (*CommitmentStore)(nil)

func (s *CommitmentStore) LoadActive(ctx context.Context) (*commitment.Record, error) {
	repo := NewSQLiteRepository(s.db)
	kind, err := GetString(ctx, repo, common.MetaActiveKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	if kind == "" {
		return nil, nil
	}
	start, err := GetTime(ctx, repo, common.MetaActiveStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return &commitment.Record{Kind: commitment.Kind(kind), Start: start}, nil
}

func (s *CommitmentStore) SaveActive(ctx context.Context, rec commitment.Record) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := SetTime(ctx, repo, common.MetaActiveStart, rec.Start); err != nil {
			return err
		}
		return SetString(ctx, repo, common.MetaActiveKind, string(rec.Kind))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return nil
}

func (s *CommitmentStore) ClearActive(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, string(common.MetaActiveKind)); err != nil {
			return err
		}
		return repo.Delete(ctx, string(common.MetaActiveStart))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return nil
}
