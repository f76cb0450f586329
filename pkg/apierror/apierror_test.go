package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	t.Parallel()

	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindPolicyRejection: http.StatusBadRequest,
		KindConflict:        http.StatusBadRequest,
		KindAuthentication:  http.StatusUnauthorized,
		KindAuthorization:   http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindRateLimited:     http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}

	for kind, status := range cases {
		require.Equal(t, status, kind.Status(), string(kind))
	}
}

func TestConstructorsAndWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := Internal(cause)
	require.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "INTERNAL_ERROR: Internal server error", err.Error())

	weak := PolicyRejection("WEAK_PASSWORD", "Password is too weak")
	withHints := weak.WithSuggestions([]string{"add a word"})
	require.Empty(t, weak.Suggestions)
	require.Equal(t, []string{"add a word"}, withHints.Suggestions)
	require.Equal(t, KindPolicyRejection, withHints.Kind)

	sentinel := errors.New("user already exists")
	conflict := Conflict("USER_ALREADY_EXISTS", "User already exists").Wrap(sentinel)
	require.ErrorIs(t, conflict, sentinel)

	var target *APIError
	require.True(t, errors.As(conflict, &target))
	require.Equal(t, http.StatusBadRequest, target.HTTPStatus)
}

func TestNewInfersKind(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindAuthentication, New("X", "m", "", http.StatusUnauthorized).Kind)
	require.Equal(t, KindAuthorization, New("X", "m", "", http.StatusForbidden).Kind)
	require.Equal(t, KindValidation, New("X", "m", "d", http.StatusBadRequest).Kind)
	require.Equal(t, KindRateLimited, New("X", "m", "", http.StatusTooManyRequests).Kind)
	require.Equal(t, KindInternal, New("X", "m", "", http.StatusServiceUnavailable).Kind)

	limited := RateLimited("RATE_LIMITED", "Too many requests")
	require.Equal(t, KindRateLimited, limited.Kind)
	require.Equal(t, http.StatusTooManyRequests, limited.HTTPStatus)
	require.Equal(t, "X: m (d)", New("X", "m", "d", http.StatusBadRequest).Error())
}
