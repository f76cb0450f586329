// Package token issues and verifies the signed access and refresh tokens.
//
// Each kind is signed with its own HMAC secret and carries a "typ" claim, so a
// refresh token never verifies as an access token and vice versa.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cyberkid042/auth-identity-service/internal/model"
)

// Lifetimes are policy, not configuration.
const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var signingMethod = jwt.SigningMethodHS256

type accessTokenClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	UserID int64  `json:"userId"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type Option func(*Service)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewService(accessSecret string, refreshSecret string, opts ...Option) (*Service, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	s := &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) IssueAccess(user model.User) (string, error) {
	now := s.now().UTC()
	claims := accessTokenClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Role:             user.Role,
		Type:             KindAccess,
		RegisteredClaims: registered(user.ID, now, AccessTTL),
	}
	return sign(claims, s.accessSecret)
}

func (s *Service) IssueRefresh(user model.User) (string, error) {
	now := s.now().UTC()
	claims := refreshTokenClaims{
		UserID:           user.ID,
		Type:             KindRefresh,
		RegisteredClaims: registered(user.ID, now, RefreshTTL),
	}
	return sign(claims, s.refreshSecret)
}

// IssuePair mints a fresh access and refresh token for user.
func (s *Service) IssuePair(user model.User) (model.TokenPair, error) {
	access, err := s.IssueAccess(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := s.IssueRefresh(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) VerifyAccess(raw string) (*model.AccessClaims, error) {
	var c accessTokenClaims
	if err := s.parse(raw, &c, s.accessSecret); err != nil {
		return nil, err
	}
	if c.Type != KindAccess || c.UserID <= 0 {
		return nil, fmt.Errorf("%w: not an access token", model.ErrInvalidToken)
	}

	return &model.AccessClaims{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		IssuedAt:  numericTime(c.IssuedAt),
		ExpiresAt: numericTime(c.ExpiresAt),
	}, nil
}

func (s *Service) VerifyRefresh(raw string) (*model.RefreshClaims, error) {
	var c refreshTokenClaims
	if err := s.parse(raw, &c, s.refreshSecret); err != nil {
		return nil, err
	}
	if c.Type != KindRefresh || c.UserID <= 0 {
		return nil, fmt.Errorf("%w: not a refresh token", model.ErrInvalidToken)
	}

	return &model.RefreshClaims{
		UserID:    c.UserID,
		IssuedAt:  numericTime(c.IssuedAt),
		ExpiresAt: numericTime(c.ExpiresAt),
	}, nil
}

// IsExpired reports whether a verification error was caused by expiry.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func (s *Service) parse(raw string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}
	return nil
}

func registered(userID int64, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time.UTC()
}
