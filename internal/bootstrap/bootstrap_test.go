package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAndSetupLogger(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
logging:
  level: debug
  format: json
`)
	cfg, _, err := LoadConfigAndSetupLogger(path)
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)

	_, _, err = LoadConfigAndSetupLogger(writeConfig(t, "jwt: [broken"))
	assert.Error(t, err)
}

func newTestConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REALTIME_PRESENCE_BACKEND", backend)
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestBuildDependencies_PostgresPresence(t *testing.T) {
	cfg := newTestConfig(t, config.PresenceBackendPostgres)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	deps, err := BuildDependencies(context.Background(), cfg, mock, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, deps.Redis)
	assert.NotNil(t, deps.Hub)

	router := SetupRouter(cfg, deps, zerolog.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong","status":"success"}`, rec.Body.String())

	// tokens issued by the wired JWT service open the stats endpoint
	token, _, err := deps.JWTService.GenerateToken(models.Identity{UserID: "u1", Role: models.RoleAdmin, SchoolID: "s1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildDependencies_RedisPresence(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := newTestConfig(t, config.PresenceBackendRedis)
	cfg.Redis.Addr = server.Addr()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	deps, err := BuildDependencies(context.Background(), cfg, mock, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, deps.Redis)
	defer deps.Redis.Close()
}

func TestBuildDependencies_RedisUnavailable(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := newTestConfig(t, config.PresenceBackendRedis)
	cfg.Redis.Addr = server.Addr()
	server.Close()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = BuildDependencies(context.Background(), cfg, mock, zerolog.Nop())
	assert.Error(t, err)
}
