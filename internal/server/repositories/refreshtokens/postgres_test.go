package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustank/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	expires := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(q).
		WithArgs("u1", "tok123", expires).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), "u1", "tok123", expires))

	mock.ExpectExec(q).
		WithArgs("u1", "tok456", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), "u1", "tok456", expires)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFind(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*user_id,\s*expires_at,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		expires := time.Now().Add(10 * time.Minute)
		mock.ExpectQuery(q).
			WithArgs("tok123").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
				AddRow("rt-1", "u1", expires, time.Now()))

		got, err := repo.Find(context.Background(), "tok123")
		require.NoError(t, err)
		assert.Equal(t, "rt-1", got.ID)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "tok123", got.Token)
		assert.True(t, got.Expires.Equal(expires))
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.Find(context.Background(), "missing")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("tok123").WillReturnError(errors.New("db err"))

		_, err := repo.Find(context.Background(), "tok123")
		require.Error(t, err)
		assert.Regexp(t, `db error: .*db err`, err.Error())
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("tok123").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "tok123"))

	mock.ExpectExec(q).WithArgs("tok123").WillReturnError(errors.New("db err"))
	require.Error(t, repo.Delete(context.Background(), "tok123"))
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+expires_at\s*<\s*\$2\s*$`
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(q).WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteExpired(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	mock.ExpectExec(q).WithArgs("u1", now).WillReturnError(errors.New("db err"))
	_, err = repo.DeleteExpired(context.Background(), "u1", now)
	require.Error(t, err)
}
