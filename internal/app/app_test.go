package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyberkid042/auth-identity-service/internal/config"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		ServerPort:       "0",
		RequestTimeout:   5 * time.Second,
		JWTSecret:        "test_jwt_secret",
		JWTRefreshSecret: "test_refresh_secret",
		DBDriver:         driver,
		BcryptCost:       bcrypt.MinCost,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 100,
		AdminUsername:    "root",
		AdminEmail:       "root@example.com",
		AdminPassword:    "vG7#pL2qX9!mZr",
	}
}

func loginAdmin(t *testing.T, h http.Handler) int {
	t.Helper()

	body := `{"email":"root@example.com","password":"vG7#pL2qX9!mZr"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec.Code
}

func TestNewWithMemoryStore(t *testing.T) {
	a, err := New(testConfig(config.DriverMemory))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, loginAdmin(t, a.Handler()))
}

func TestNewWithSQLiteStoreBootstrapsAdminOnce(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.DBPath = filepath.Join(t.TempDir(), "auth.sqlite")

	first, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, loginAdmin(t, first.Handler()))
	first.Close()

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(second.Close)
	assert.Equal(t, http.StatusOK, loginAdmin(t, second.Handler()))
}

func TestNewWithRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(config.DriverMemory)
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.AuthRateLimitRPM = 1

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Equal(t, http.StatusOK, loginAdmin(t, a.Handler()))
	assert.Equal(t, http.StatusTooManyRequests, loginAdmin(t, a.Handler()))
	assert.NotEmpty(t, mr.Keys())
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(config.DriverMemory)
	cfg.RedisURL = "redis://" + addr

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
