package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

var (
	errUserNotFound  = apierror.NotFound(apierror.CodeNotFound, "User not found")
	errNothingToEdit = apierror.Validation(apierror.CodeValidation, "At least one of username, email or role is required")
)

// UserService backs the administrator user-management endpoints.
type UserService struct {
	store UserStore
	now   func() time.Time
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("list users: %w", err))
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.UserSummary, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return model.UserSummary{}, err
	}
	return user.Summary(), nil
}

// Update applies the non-nil fields of upd. Password and timestamps are not
// editable here.
func (s *UserService) Update(ctx context.Context, id int64, upd model.UserUpdate) (model.PublicUser, error) {
	if upd.Username == nil && upd.Email == nil && upd.Role == nil {
		return model.PublicUser{}, errNothingToEdit
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}

	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if err := validateUsername(username); err != nil {
			return model.PublicUser{}, err
		}
		user.Username = username
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if err := validateEmail(email); err != nil {
			return model.PublicUser{}, err
		}
		user.Email = email
	}
	if upd.Role != nil {
		if err := validateRole(*upd.Role); err != nil {
			return model.PublicUser{}, err
		}
		user.Role = *upd.Role
	}
	user.UpdatedAt = s.now().UTC()

	err = s.store.Update(ctx, user)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return model.PublicUser{}, errUserNotFound.Wrap(err)
	case errors.Is(err, model.ErrUserAlreadyExists):
		return model.PublicUser{}, errIdentityTaken.Wrap(err)
	case err != nil:
		return model.PublicUser{}, apierror.Internal(fmt.Errorf("update user: %w", err))
	}

	slog.Info("user updated", "user_id", user.ID, "role", user.Role)
	return user.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return errUserNotFound.Wrap(err)
	}
	if err != nil {
		return apierror.Internal(fmt.Errorf("delete user: %w", err))
	}

	slog.Info("user deleted", "user_id", id)
	return nil
}

// Ping reports whether the backing store is reachable.
func (s *UserService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *UserService) find(ctx context.Context, id int64) (model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, errUserNotFound.Wrap(err)
	}
	if err != nil {
		return model.User{}, apierror.Internal(fmt.Errorf("find user: %w", err))
	}
	return user, nil
}
