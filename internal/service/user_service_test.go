package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/repository"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

func seedUsers(t *testing.T, store *repository.MemoryUserRepository, names ...string) []model.User {
	t.Helper()

	users := make([]model.User, 0, len(names))
	for _, name := range names {
		u, err := store.Create(context.Background(), model.User{
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "digest",
			Role:         model.RoleUser,
		})
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func ptr(s string) *string { return &s }

func TestUserService_ListAndGet(t *testing.T) {
	store := repository.NewMemoryUserRepository()
	svc := NewUserService(store)
	ctx := context.Background()

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	seeded := seedUsers(t, store, "alice", "bob")

	users, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.False(t, users[0].CreatedAt.IsZero())

	got, err := svc.Get(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	_, err = svc.Get(ctx, 999)
	requireAPIError(t, err, http.StatusNotFound, apierror.CodeNotFound, "User not found")
}

func TestUserService_Update(t *testing.T) {
	t.Run("partial update keeps other fields", func(t *testing.T) {
		store := repository.NewMemoryUserRepository()
		svc := NewUserService(store)
		seeded := seedUsers(t, store, "alice")

		updated, err := svc.Update(context.Background(), seeded[0].ID, model.UserUpdate{Role: ptr(model.RoleAdmin)})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "alice@example.com", updated.Email)

		stored, err := store.FindByID(context.Background(), seeded[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "digest", stored.PasswordHash)
		assert.True(t, stored.UpdatedAt.After(seeded[0].UpdatedAt) || stored.UpdatedAt.Equal(seeded[0].UpdatedAt))
	})

	t.Run("validation", func(t *testing.T) {
		store := repository.NewMemoryUserRepository()
		svc := NewUserService(store)
		id := seedUsers(t, store, "alice")[0].ID
		ctx := context.Background()

		_, err := svc.Update(ctx, id, model.UserUpdate{})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeValidation, "At least one of username, email or role is required")

		_, err = svc.Update(ctx, id, model.UserUpdate{Role: ptr("superuser")})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeValidation, msgInvalidRole)

		_, err = svc.Update(ctx, id, model.UserUpdate{Role: ptr("Admin")})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeValidation, msgInvalidRole)

		_, err = svc.Update(ctx, id, model.UserUpdate{Email: ptr("broken")})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeValidation, msgInvalidEmail)

		_, err = svc.Update(ctx, id, model.UserUpdate{Username: ptr("no spaces")})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeValidation, msgInvalidUsername)
	})

	t.Run("conflict and not found", func(t *testing.T) {
		store := repository.NewMemoryUserRepository()
		svc := NewUserService(store)
		seeded := seedUsers(t, store, "alice", "bob")
		ctx := context.Background()

		_, err := svc.Update(ctx, seeded[1].ID, model.UserUpdate{Email: ptr("alice@example.com")})
		requireAPIError(t, err, http.StatusBadRequest, apierror.CodeUserAlreadyExists, "User with this email or username already exists")

		_, err = svc.Update(ctx, 999, model.UserUpdate{Role: ptr(model.RoleUser)})
		requireAPIError(t, err, http.StatusNotFound, apierror.CodeNotFound, "User not found")
	})
}

func TestUserService_Delete(t *testing.T) {
	store := repository.NewMemoryUserRepository()
	svc := NewUserService(store)
	id := seedUsers(t, store, "alice")[0].ID
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, id))

	_, err := svc.Get(ctx, id)
	requireAPIError(t, err, http.StatusNotFound, apierror.CodeNotFound, "User not found")

	err = svc.Delete(ctx, id)
	requireAPIError(t, err, http.StatusNotFound, apierror.CodeNotFound, "User not found")
}

func TestUserService_StoreFailures(t *testing.T) {
	boom := errors.New("database is closed")
	store := new(repository.MockUserRepository)
	store.On("List", mock.Anything).Return(nil, boom)
	store.On("FindByID", mock.Anything, int64(1)).Return(model.User{}, boom)
	store.On("Delete", mock.Anything, int64(1)).Return(boom)
	store.On("Ping", mock.Anything).Return(boom)

	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.List(ctx)
	requireAPIError(t, err, http.StatusInternalServerError, apierror.CodeInternal, "Internal server error")
	assert.ErrorIs(t, err, boom)

	_, err = svc.Get(ctx, 1)
	requireAPIError(t, err, http.StatusInternalServerError, apierror.CodeInternal, "Internal server error")

	err = svc.Delete(ctx, 1)
	requireAPIError(t, err, http.StatusInternalServerError, apierror.CodeInternal, "Internal server error")

	assert.ErrorIs(t, svc.Ping(ctx), boom)
	store.AssertExpectations(t)
}
