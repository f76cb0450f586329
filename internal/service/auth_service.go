package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cyberkid042/auth-identity-service/internal/metrics"
	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/policy"
	"github.com/cyberkid042/auth-identity-service/internal/token"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opRefresh  = "refresh"
)

// Verified against when the email is unknown so that a miss costs the same
// as a wrong password.
const timingDummyPassword = "timing-equalizer-not-a-real-password"

var (
	errMissingRegisterFields = apierror.Validation(apierror.CodeMissingFields, "Username, email, and password are required")
	errMissingLoginFields    = apierror.Validation(apierror.CodeMissingFields, "Email and password are required")
	errEmailTaken            = apierror.Conflict(apierror.CodeUserAlreadyExists, "User with this email already exists")
	errIdentityTaken         = apierror.Conflict(apierror.CodeUserAlreadyExists, "User with this email or username already exists")
	errInvalidCredentials    = apierror.Authentication(apierror.CodeInvalidCredentials, "Invalid credentials")
	errRefreshTokenRequired  = apierror.Validation(apierror.CodeRefreshTokenRequired, "Refresh token is required")
	errRefreshTokenRejected  = apierror.Authentication(apierror.CodeInvalidRefreshToken, "Invalid or expired refresh token")
	errRefreshUserMissing    = apierror.Authentication(apierror.CodeInvalidRefreshToken, "Invalid refresh token")
)

type AuthService struct {
	store     UserStore
	hasher    PasswordHasher
	policy    PasswordPolicy
	tokens    TokenIssuer
	recorder  AuthRecorder
	dummyHash string
	now       func() time.Time
}

func NewAuthService(store UserStore, hasher PasswordHasher, passwordPolicy PasswordPolicy, tokens TokenIssuer, recorder AuthRecorder) (*AuthService, error) {
	if store == nil || hasher == nil || passwordPolicy == nil || tokens == nil {
		return nil, errors.New("auth service: missing dependency")
	}
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}

	dummy, err := hasher.Hash(timingDummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth service: prepare dummy hash: %w", err)
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		policy:    passwordPolicy,
		tokens:    tokens,
		recorder:  recorder,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// Register validates and stores a new identity with the default role. Each
// step short-circuits; nothing is written unless every check passes.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	user, err := s.createIdentity(ctx, req.Username, req.Email, req.Password, model.RoleUser)
	if err != nil {
		s.recorder.RecordAuth(opRegister, outcomeFor(err))
		return model.PublicUser{}, err
	}

	s.recorder.RecordAuth(opRegister, metrics.OutcomeSuccess)
	slog.Info("user registered", "user_id", user.ID, "email_domain", emailDomain(user.Email))
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.recorder.RecordAuth(opLogin, metrics.OutcomeInvalid)
		return model.LoginResult{}, errMissingLoginFields
	}

	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.Verify(req.Password, s.dummyHash)
		s.recorder.RecordAuth(opLogin, metrics.OutcomeRejected)
		slog.Warn("login failed", "email_domain", emailDomain(email), "reason", "unknown_email")
		return model.LoginResult{}, errInvalidCredentials.Wrap(model.ErrInvalidCredentials)
	}
	if err != nil {
		s.recorder.RecordAuth(opLogin, metrics.OutcomeError)
		return model.LoginResult{}, apierror.Internal(fmt.Errorf("login lookup: %w", err))
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.recorder.RecordAuth(opLogin, metrics.OutcomeRejected)
		slog.Warn("login failed", "user_id", user.ID, "reason", "password_mismatch")
		return model.LoginResult{}, errInvalidCredentials.Wrap(model.ErrInvalidCredentials)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.recorder.RecordAuth(opLogin, metrics.OutcomeError)
		return model.LoginResult{}, apierror.Internal(err)
	}

	s.recorder.RecordAuth(opLogin, metrics.OutcomeSuccess)
	slog.Info("user logged in", "user_id", user.ID)
	return model.LoginResult{TokenPair: pair, User: user.Public()}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The identity is
// re-read so the new access token carries the current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		s.recorder.RecordAuth(opRefresh, metrics.OutcomeInvalid)
		return model.TokenPair{}, errRefreshTokenRequired
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if token.IsExpired(err) {
			outcome = metrics.OutcomeExpired
		}
		s.recorder.RecordAuth(opRefresh, outcome)
		slog.Warn("refresh rejected", "reason", err.Error())
		return model.TokenPair{}, errRefreshTokenRejected.Wrap(err)
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		s.recorder.RecordAuth(opRefresh, metrics.OutcomeRejected)
		slog.Warn("refresh rejected", "user_id", claims.UserID, "reason", "user_missing")
		return model.TokenPair{}, errRefreshUserMissing.Wrap(err)
	}
	if err != nil {
		s.recorder.RecordAuth(opRefresh, metrics.OutcomeError)
		return model.TokenPair{}, apierror.Internal(fmt.Errorf("refresh lookup: %w", err))
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		s.recorder.RecordAuth(opRefresh, metrics.OutcomeError)
		return model.TokenPair{}, apierror.Internal(err)
	}

	s.recorder.RecordAuth(opRefresh, metrics.OutcomeSuccess)
	return pair, nil
}

// EnsureAdmin creates an administrator with the given credentials unless a
// user with that email already exists. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username string, email string, password string) (bool, error) {
	existing, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		if existing.Role != model.RoleAdmin {
			slog.Warn("bootstrap admin email belongs to a non-admin user", "user_id", existing.ID)
		}
		return false, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return false, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	user, err := s.createIdentity(ctx, username, email, password, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin created", "user_id", user.ID, "username", user.Username)
	return true, nil
}

func (s *AuthService) createIdentity(ctx context.Context, username string, email string, password string, role string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return model.User{}, errMissingRegisterFields
	}
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if err := validatePasswordLength(password); err != nil {
		return model.User{}, err
	}

	eval := s.policy.Evaluate(password, email)
	if !eval.Accepted {
		return model.User{}, rejectionError(eval)
	}

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, errEmailTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.Internal(fmt.Errorf("check email uniqueness: %w", err))
	}

	// Hashing is the expensive step; skip it for abandoned requests.
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, apierror.Internal(err)
	}

	now := s.now().UTC()
	created, err := s.store.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.User{}, errIdentityTaken.Wrap(err)
	}
	if err != nil {
		return model.User{}, apierror.Internal(fmt.Errorf("create user: %w", err))
	}
	return created, nil
}

func rejectionError(eval policy.Evaluation) error {
	if eval.Rejection == policy.RejectionDisposable {
		return apierror.PolicyRejection(apierror.CodeDisposableEmail, eval.Reason)
	}
	return apierror.PolicyRejection(apierror.CodeWeakPassword, eval.Reason).WithSuggestions(eval.Suggestions)
}

func outcomeFor(err error) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Kind != apierror.KindInternal {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
