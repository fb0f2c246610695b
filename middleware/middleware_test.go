package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"challenge_hub/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	mu      sync.Mutex
	users   map[int64]*model.User
	touches int
}

func (s *stubUsers) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *stubUsers) TouchActivity(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touches++
	if u, ok := s.users[id]; ok {
		u.LastActiveAt = at
	}
	return nil
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: map[int64]*model.User{
		1: {ID: 1, Pseudo: "alice", Status: model.UserStatusActive},
		2: {ID: 2, Pseudo: "banned", Status: model.UserStatusSuspended},
	}}
}

func init() {
	gin.SetMode(gin.TestMode)
	InitAuth("test-secret-with-enough-length-000")
}

func whoAmI(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(newStubUsers()), whoAmI)

	valid, err := GenerateToken(1, time.Hour)
	require.NoError(t, err)
	suspended, err := GenerateToken(2, time.Hour)
	require.NoError(t, err)
	unknown, err := GenerateToken(99, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(1, -time.Minute)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized},
		{"suspended user", "Bearer " + suspended, http.StatusUnauthorized},
		{"unknown user", "Bearer " + unknown, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := doRequest(r, "Bearer "+valid)
	assert.JSONEq(t, `{"user_id":1}`, w.Body.String())
}

func TestValidateToken_RejectsMissingUserID(t *testing.T) {
	token, err := GenerateToken(0, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestActivityMiddleware_ThrottledByRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	users := newStubUsers()
	r := gin.New()
	r.GET("/me", AuthMiddleware(users), ActivityMiddleware(users, rdb), whoAmI)

	token, err := GenerateToken(1, time.Hour)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, "Bearer "+token).Code)
	}
	assert.Equal(t, 1, users.touches)
	assert.False(t, users.users[1].LastActiveAt.IsZero())

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, doRequest(r, "Bearer "+token).Code)
	assert.Equal(t, 2, users.touches)
}

func TestActivityMiddleware_WithoutRedisTouchesEveryRequest(t *testing.T) {
	users := newStubUsers()
	r := gin.New()
	r.GET("/me", AuthMiddleware(users), ActivityMiddleware(users, nil), whoAmI)

	token, err := GenerateToken(1, time.Hour)
	require.NoError(t, err)

	doRequest(r, "Bearer "+token)
	doRequest(r, "Bearer "+token)
	assert.Equal(t, 2, users.touches)
}

func TestRateLimiter_PerUserBuckets(t *testing.T) {
	users := newStubUsers()
	users.users[3] = &model.User{ID: 3, Pseudo: "carol", Status: model.UserStatusActive}

	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.GET("/me", AuthMiddleware(users), limiter.Middleware(), whoAmI)

	alice, err := GenerateToken(1, time.Hour)
	require.NoError(t, err)
	carol, err := GenerateToken(3, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+alice).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+alice).Code)
	w := doRequest(r, "Bearer "+alice)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// another user has a bucket of their own
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+carol).Code)

	limiter.Cleanup(-time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+alice).Code)
}

func TestErrorHandlerMiddleware_RecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandlerMiddleware())
	r.GET("/me", func(c *gin.Context) { panic("boom") })

	w := doRequest(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestMetricsAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/metrics", MetricsAuthMiddleware("prom", "secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="Metrics"`, w.Header().Get("WWW-Authenticate"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMonitorMiddleware_UsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(MonitorMiddleware())
	r.GET("/friends/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/friends/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/friends/:id", http.MethodGet, "204")))
	// no per-id label explosion
	assert.Zero(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/friends/7", http.MethodGet, "204")))
}
