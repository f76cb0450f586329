package service

import (
	"context"

	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/policy"
)

// UserStore persists identities. Implementations report a missing user as
// model.ErrUserNotFound and a duplicate email or username as
// model.ErrUserAlreadyExists.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, digest string) bool
}

type PasswordPolicy interface {
	Evaluate(password string, email string) policy.Evaluation
}

type TokenIssuer interface {
	IssuePair(user model.User) (model.TokenPair, error)
	VerifyRefresh(raw string) (*model.RefreshClaims, error)
}

type AuthRecorder interface {
	RecordAuth(operation string, outcome string)
}
