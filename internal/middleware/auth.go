package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cyberkid042/auth-identity-service/internal/metrics"
	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/internal/token"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

const bearerPrefix = "Bearer "

type AccessVerifier interface {
	VerifyAccess(raw string) (*model.AccessClaims, error)
}

type VerificationRecorder interface {
	RecordTokenVerification(kind string, outcome string)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

var (
	errAccessTokenRequired  = apierror.Authentication(apierror.CodeAccessTokenRequired, "Access token required")
	errInvalidAccessToken   = apierror.Authorization(apierror.CodeInvalidToken, "Invalid or expired token")
	errAuthenticationNeeded = apierror.Authentication(apierror.CodeAuthRequired, "Authentication required")
	errInsufficientPerms    = apierror.Authorization(apierror.CodeInsufficientPerms, "Insufficient permissions")
)

// AuthMiddleware is the authentication gate. It verifies the bearer access
// token and never consults the user store.
type AuthMiddleware struct {
	verifier AccessVerifier
	recorder VerificationRecorder
}

func NewAuthMiddleware(verifier AccessVerifier, recorder VerificationRecorder) *AuthMiddleware {
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}
	return &AuthMiddleware{verifier: verifier, recorder: recorder}
}

// Authenticate resolves an Authorization header value to verified claims.
// A missing or malformed header is a 401; a token that fails verification
// is a 403.
func (m *AuthMiddleware) Authenticate(header string) (*model.AccessClaims, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errAccessTokenRequired
	}
	raw := header[len(bearerPrefix):]
	if strings.TrimSpace(raw) == "" {
		return nil, errAccessTokenRequired
	}

	claims, err := m.verifier.VerifyAccess(raw)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if token.IsExpired(err) {
			outcome = metrics.OutcomeExpired
		}
		m.recorder.RecordTokenVerification(token.KindAccess, outcome)
		return nil, errInvalidAccessToken.Wrap(err)
	}

	m.recorder.RecordTokenVerification(token.KindAccess, metrics.OutcomeSuccess)
	return claims, nil
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			writeGateError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// RequireRoles admits requests whose claims carry one of allowedRoles.
// Roles are compared exactly.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return RequireRoles(allowedRoles...)
}

func RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roles := append([]string(nil), allowedRoles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if err := Authorize(claims, roles...); err != nil {
				writeGateError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Authorize is the authorization gate: nil claims are unauthenticated, and a
// role outside allowedRoles is forbidden.
func Authorize(claims *model.AccessClaims, allowedRoles ...string) error {
	if claims == nil {
		return errAuthenticationNeeded
	}
	for _, role := range allowedRoles {
		if claims.Role == role {
			return nil
		}
	}
	return errInsufficientPerms
}

func ContextWithClaims(ctx context.Context, claims *model.AccessClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*model.AccessClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AccessClaims)
	return claims, ok && claims != nil
}

func writeGateError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierror.Internal(err)
	}
	writeAPIError(w, apiErr)
}
