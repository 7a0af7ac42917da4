package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pointsdash/api/middleware"
	"github.com/angelmondragon/pointsdash/internal/analytics"
	pkgAuth "github.com/angelmondragon/pointsdash/pkg/auth"
	"github.com/angelmondragon/pointsdash/pkg/config"
	"github.com/angelmondragon/pointsdash/pkg/enums"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubComputer struct{}

func (stubComputer) Compute(_ context.Context, req analytics.Request) (*analytics.Snapshot, error) {
	return &analytics.Snapshot{Role: req.Role.DashboardRole(), GeneratedAt: time.Now().UTC()}, nil
}

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (l *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = map[string]int64{}
	}
	l.counts[scope]++
	return l.counts[scope] <= limit, l.counts[scope], nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "dev"},
		JWT:       config.JWTConfig{Secret: "secret", Issuer: "pointsdash"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{DashboardLimit: 2, DashboardWindow: time.Minute},
	}
}

func newTestRouter(t *testing.T, limiter *countingLimiter) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	m := metrics.NewAggregationMetrics(reg)
	svc, err := analytics.NewService(stubComputer{}, analytics.NewTracker(), m, logger.Nop())
	require.NoError(t, err)

	var store middleware.RateLimiterStore
	if limiter != nil {
		store = limiter
	}
	return NewRouter(cfg, logger.Nop(), stubPinger{}, store, reg, svc), cfg
}

func bearer(t *testing.T, cfg *config.Config, userID string, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func get(router http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, get(router, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/public/ping", "").Code)
}

func TestDashboardRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := get(router, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDashboardFlowAndMetrics(t *testing.T) {
	router, cfg := newTestRouter(t, nil)
	auth := bearer(t, cfg, "9", enums.RoleSuperuser)

	rec := get(router, "/api/v1/dashboard", auth)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data analytics.Snapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, enums.RoleManager, body.Data.Role)
	assert.Equal(t, uint64(1), body.Data.Generation)

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/dashboard/latest", auth).Code)

	state := get(router, "/api/v1/dashboard/state", auth)
	require.Equal(t, http.StatusOK, state.Code)
	assert.Contains(t, state.Body.String(), `"status":"ready"`)

	metricsRec := get(router, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.True(t, strings.Contains(metricsRec.Body.String(), `snapshot_outcome{outcome="committed",role="manager"} 1`))
}

func TestFacetRouteRequiresManager(t *testing.T) {
	router, cfg := newTestRouter(t, nil)
	rec := get(router, "/api/v1/dashboard/facets/users", bearer(t, cfg, "3", enums.RoleRegular))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardRateLimited(t *testing.T) {
	limiter := &countingLimiter{}
	router, cfg := newTestRouter(t, limiter)
	auth := bearer(t, cfg, "5", enums.RoleRegular)

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/dashboard", auth).Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/dashboard", auth).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/api/v1/dashboard", auth).Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/dashboard/state", auth).Code, "state is not throttled")
}
