package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"telegram_rpg/pkg/logger"
)

// fakeRateLimitService фиксирует ключи и отдаёт заранее заданный вердикт.
type fakeRateLimitService struct {
	allowed  bool
	checkErr error
	count    int64
	lastKey  string
}

func (s *fakeRateLimitService) CheckLimit(_ context.Context, key string, _ int, _ int) (bool, error) {
	s.lastKey = key
	return s.allowed, s.checkErr
}

func (s *fakeRateLimitService) Increment(_ context.Context, key string, _ int) (int64, error) {
	s.count++
	return s.count, nil
}

func newLimitedRouter(svc *fakeRateLimitService, scope string, limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewRateLimitMiddleware(svc, logger.New("error"))

	router := gin.New()
	router.POST("/limited", m.Limit(scope, limit, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRateLimitAllowsAndCounts(t *testing.T) {
	svc := &fakeRateLimitService{allowed: true}
	router := newLimitedRouter(svc, "messages", 30, time.Minute)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "29", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	svc := &fakeRateLimitService{allowed: false}
	router := newLimitedRouter(svc, "auth", 10, time.Minute)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitKeysAreScopedPerRoute(t *testing.T) {
	authSvc := &fakeRateLimitService{allowed: true}
	messagesSvc := &fakeRateLimitService{allowed: true}

	w := httptest.NewRecorder()
	newLimitedRouter(authSvc, "auth", 10, time.Minute).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))
	w = httptest.NewRecorder()
	newLimitedRouter(messagesSvc, "messages", 30, time.Minute).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	require.Contains(t, authSvc.lastKey, "http:auth:")
	require.Contains(t, messagesSvc.lastKey, "http:messages:")
	require.NotEqual(t, authSvc.lastKey, messagesSvc.lastKey)
}

func TestRateLimitFailsOpenOnStorageError(t *testing.T) {
	svc := &fakeRateLimitService{checkErr: errors.New("redis down")}
	router := newLimitedRouter(svc, "auth", 10, time.Minute)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))

	// Недоступный лимитер не должен блокировать трафик
	require.Equal(t, http.StatusOK, w.Code)
}
