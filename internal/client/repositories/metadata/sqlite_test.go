package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustank/internal/commitment"
	"github.com/dmitrijs2005/focustank/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_MissingIsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}

func TestTypedHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n, err := GetInt(ctx, r, common.MetaTotalItemsCaught)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = AddInt(ctx, r, common.MetaTotalItemsCaught, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	n, err = AddInt(ctx, r, common.MetaTotalItemsCaught, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	ts := time.Date(2025, 5, 6, 7, 8, 9, 123, time.UTC)
	require.NoError(t, SetTime(ctx, r, common.MetaLastSync, ts))
	got, err := GetTime(ctx, r, common.MetaLastSync)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	require.NoError(t, SetString(ctx, r, common.MetaUserName, "alice"))
	s, err := GetString(ctx, r, common.MetaUserName)
	require.NoError(t, err)
	assert.Equal(t, "alice", s)

	require.NoError(t, r.Set(ctx, string(common.MetaTotalFocusSecs), []byte("nope")))
	_, err = GetInt(ctx, r, common.MetaTotalFocusSecs)
	assert.Error(t, err)
}

func TestCommitmentStore(t *testing.T) {
	store := NewCommitmentStore(setupDB(t))
	ctx := context.Background()

	rec, err := store.LoadActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveActive(ctx, commitment.Record{Kind: "short", Start: start}))

	rec, err = store.LoadActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, commitment.Kind("short"), rec.Kind)
	assert.True(t, start.Equal(rec.Start))

	require.NoError(t, store.ClearActive(ctx))
	rec, err = store.LoadActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCommitmentStore_FailureIsPersistenceError(t *testing.T) {
	db := setupDB(t)
	store := NewCommitmentStore(db)
	require.NoError(t, db.Close())

	err := store.SaveActive(context.Background(), commitment.Record{Kind: "short", Start: time.Now()})
	assert.ErrorIs(t, err, common.ErrPersistence)
}

func TestCommitmentStore_SaveIsAllOrNothing(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TRIGGER reject_kind BEFORE INSERT ON metadata
		WHEN NEW.key = '%s'
		BEGIN SELECT RAISE(ABORT, 'kind rejected'); END;
	`, common.MetaActiveKind))
	require.NoError(t, err)

	store := NewCommitmentStore(db)
	err = store.SaveActive(ctx, commitment.Record{Kind: "short", Start: time.Now()})
	require.ErrorIs(t, err, common.ErrPersistence)

	v, err := NewSQLiteRepository(db).Get(ctx, string(common.MetaActiveStart))
	require.NoError(t, err)
	assert.Nil(t, v, "start must roll back with the kind")
}
