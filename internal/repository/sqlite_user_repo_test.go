package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/cyberkid042/auth-identity-service/internal/database"
	"github.com/cyberkid042/auth-identity-service/internal/model"
)

func newSQLiteRepo(t *testing.T) *SQLiteUserRepository {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "authdb.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteUserRepository(db)
}

func TestSQLiteUserRepository(t *testing.T) {
	runUserStoreSuite(t, func(t *testing.T) userStore {
		return newSQLiteRepo(t)
	})
}

func TestSQLiteUserRepositoryPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "authdb.sqlite")

	db, err := database.OpenSQLite(ctx, path)
	require.NoError(t, err)
	created, err := NewSQLiteUserRepository(db).Create(ctx, newUser("testuser", "test@example.com"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	found, err := NewSQLiteUserRepository(db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "test@example.com", found.Email)
}

func newMockedSQLiteRepo(t *testing.T) (*SQLiteUserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteUserRepository(sqlx.NewDb(db, "sqlite3")), mock
}

func TestSQLiteUserRepositorySurfacesDriverErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("disk I/O error")

	t.Run("find", func(t *testing.T) {
		repo, mock := newMockedSQLiteRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = ?`)).
			WithArgs("test@example.com").
			WillReturnError(boom)

		_, err := repo.FindByEmail(ctx, "test@example.com")
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, model.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create", func(t *testing.T) {
		repo, mock := newMockedSQLiteRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(boom)

		_, err := repo.Create(ctx, newUser("testuser", "test@example.com"))
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, model.ErrUserAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		repo, mock := newMockedSQLiteRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY id`)).WillReturnError(boom)

		_, err := repo.List(ctx)
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete reports missing row", func(t *testing.T) {
		repo, mock := newMockedSQLiteRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.Delete(ctx, 7), model.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLiteUserRepositoryScansRows(t *testing.T) {
	t.Parallel()

	repo, mock := newMockedSQLiteRepo(t)
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(int64(3), "testuser", "test@example.com", "digest", "admin", fixedTime, fixedTime)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).WithArgs(int64(3)).WillReturnRows(rows)

	u, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, model.RoleAdmin, u.Role)
	require.True(t, fixedTime.Equal(u.CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
