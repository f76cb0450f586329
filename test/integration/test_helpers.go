//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyberkid042/auth-identity-service/internal/app"
	"github.com/cyberkid042/auth-identity-service/internal/config"
	"github.com/cyberkid042/auth-identity-service/internal/model"
)

const (
	adminEmail    = "root@example.com"
	adminPassword = "vG7#pL2qX9!mZr"
)

// startPostgres returns a connection string for a throwaway database, or
// skips the test when Docker is unavailable.
func startPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration tests")
	}
	_ = provider.Close()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("auth_it"),
		postgres.WithUsername("auth"),
		postgres.WithPassword("auth_it_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func postgresConfig(databaseURL string) *config.Config {
	return &config.Config{
		ServerPort:       "0",
		RequestTimeout:   10 * time.Second,
		Environment:      config.EnvProduction,
		JWTSecret:        "integration_jwt_secret",
		JWTRefreshSecret: "integration_refresh_secret",
		DBDriver:         config.DriverPostgres,
		DatabaseURL:      databaseURL,
		DBMaxConns:       5,
		DBMinConns:       1,
		BcryptCost:       bcrypt.MinCost,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		AdminUsername:    "root",
		AdminEmail:       adminEmail,
		AdminPassword:    adminPassword,
	}
}

func newServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method string, url string, body any, accessToken string) (*http.Response, []byte) {
	t.Helper()

	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func login(t *testing.T, baseURL string, email string, password string) model.LoginResponse {
	t.Helper()

	resp, data := doJSON(t, http.MethodPost, baseURL+"/auth/login", model.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var parsed model.LoginResponse
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.NotEmpty(t, parsed.AccessToken)
	require.NotEmpty(t, parsed.RefreshToken)
	return parsed
}

func decodeBody(resp *http.Response, dst any) error {
	return json.NewDecoder(resp.Body).Decode(dst)
}
