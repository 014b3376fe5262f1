package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustank/internal/dbx"
	"github.com/dmitrijs2005/focustank/internal/server/models"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/items"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "42"
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	deleted []string
	delErr  error

	created      []string
	createdUntil time.Time
	createErr    error

	purgedFor  string
	purgeErr   error
	purgeCount int64
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	f.createdUntil = expiresAt
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, userID string, _ time.Time) (int64, error) {
	f.purgedFor = userID
	return f.purgeCount, f.purgeErr
}

type fakeItemsRepo struct {
	stored  []models.Item
	listErr error
	lists   int

	deletedFor string
	deleteErr  error

	inserted  []models.Item
	insertErr error
}

func (f *fakeItemsRepo) ListByUser(context.Context, string) ([]models.Item, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stored, nil
}

func (f *fakeItemsRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.deletedFor = userID
	return int64(len(f.stored)), f.deleteErr
}

func (f *fakeItemsRepo) InsertBatch(_ context.Context, in []models.Item) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = in
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	i *fakeItemsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository                 { return m.i }
