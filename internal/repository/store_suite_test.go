package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberkid042/auth-identity-service/internal/model"
)

type userStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

var fixedTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

var (
	_ userStore = (*MemoryUserRepository)(nil)
	_ userStore = (*SQLiteUserRepository)(nil)
	_ userStore = (*UserRepository)(nil)
	_ userStore = (*MockUserRepository)(nil)
)

func newUser(username string, email string) model.User {
	return model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$digestdigestdigestdigestdigestdigestdigestdigestdiges",
		Role:         model.RoleUser,
	}
}

// runUserStoreSuite checks behavior every store implementation must share.
func runUserStoreSuite(t *testing.T, newStore func(t *testing.T) userStore) {
	t.Run("create assigns id and timestamps", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, newUser("testuser", "test@example.com"))
		require.NoError(t, err)
		require.Positive(t, created.ID)
		require.False(t, created.CreatedAt.IsZero())

		found, err := store.FindByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "testuser", found.Username)
		assert.Equal(t, model.RoleUser, found.Role)
		assert.Equal(t, created.PasswordHash, found.PasswordHash)
		assert.WithinDuration(t, created.CreatedAt, found.CreatedAt, time.Second)

		byID, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "test@example.com", byID.Email)
	})

	t.Run("duplicate email or username conflicts", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newUser("testuser", "test@example.com"))
		require.NoError(t, err)

		_, err = store.Create(ctx, newUser("other", "test@example.com"))
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)

		_, err = store.Create(ctx, newUser("testuser", "other@example.com"))
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("missing users are not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.FindByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, model.ErrUserNotFound)
		_, err = store.FindByID(ctx, 999)
		require.ErrorIs(t, err, model.ErrUserNotFound)
		require.ErrorIs(t, store.Update(ctx, model.User{ID: 999, Username: "x_x", Email: "x@example.com", Role: model.RoleUser}), model.ErrUserNotFound)
		require.ErrorIs(t, store.Delete(ctx, 999), model.ErrUserNotFound)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		users, err := store.List(ctx)
		require.NoError(t, err)
		require.Empty(t, users)

		for _, name := range []string{"alice", "bob", "carol"} {
			_, err := store.Create(ctx, newUser(name, name+"@example.com"))
			require.NoError(t, err)
		}

		users, err = store.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "carol", users[2].Username)
		assert.Less(t, users[0].ID, users[1].ID)
	})

	t.Run("update changes profile fields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, newUser("testuser", "test@example.com"))
		require.NoError(t, err)
		other, err := store.Create(ctx, newUser("other", "other@example.com"))
		require.NoError(t, err)

		created.Username = "renamed"
		created.Role = model.RoleAdmin
		require.NoError(t, store.Update(ctx, created))

		found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", found.Username)
		assert.Equal(t, model.RoleAdmin, found.Role)
		assert.Equal(t, created.PasswordHash, found.PasswordHash)

		other.Email = "test@example.com"
		require.ErrorIs(t, store.Update(ctx, other), model.ErrUserAlreadyExists)
	})

	t.Run("delete removes the user", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Create(ctx, newUser("testuser", "test@example.com"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, created.ID))

		_, err = store.FindByID(ctx, created.ID)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("concurrent creates admit exactly one", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const attempts = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Create(ctx, newUser("racer", "race@example.com"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, model.ErrUserAlreadyExists):
					conflicts++
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, succeeded)
		require.Equal(t, attempts-1, conflicts)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}
