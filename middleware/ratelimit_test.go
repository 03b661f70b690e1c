package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(cfg RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", RateLimiter(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func postLogin(r http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(client)
	defer config.ResetRedisClientForTest()

	key := "ratelimit:/auth/login:203.0.113.7"
	window := time.Minute
	for i := int64(1); i <= 3; i++ {
		mock.ExpectIncr(key).SetVal(i)
		mock.ExpectExpire(key, window).SetVal(true)
	}

	r := limitedRouter(RateLimitConfig{Limit: 2, Window: window})
	assert.Equal(t, http.StatusOK, postLogin(r).Code)
	assert.Equal(t, http.StatusOK, postLogin(r).Code)

	w := postLogin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "RateLimitError", decodeError(t, w).Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_NoRedisAllows(t *testing.T) {
	config.ResetRedisClientForTest()
	r := limitedRouter(RateLimitConfig{Limit: 1})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, postLogin(r).Code)
	}
}

func TestRateLimiter_RedisErrorAllows(t *testing.T) {
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(client)
	defer config.ResetRedisClientForTest()

	key := "ratelimit:/auth/login:203.0.113.7"
	mock.ExpectIncr(key).SetErr(errors.New("connection reset"))
	mock.ExpectExpire(key, defaultRateWindow).SetErr(errors.New("connection reset"))

	assert.Equal(t, http.StatusOK, postLogin(limitedRouter(RateLimitConfig{})).Code)
}

func TestResetRateLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(client)
	defer config.ResetRedisClientForTest()

	mock.ExpectDel("ratelimit:/auth/login:203.0.113.7").SetVal(1)
	assert.NoError(t, ResetRateLimit(context.Background(), "203.0.113.7", "/auth/login"))
	assert.NoError(t, mock.ExpectationsWereMet())

	config.ResetRedisClientForTest()
	assert.Error(t, ResetRateLimit(context.Background(), "203.0.113.7", "/auth/login"))
}
