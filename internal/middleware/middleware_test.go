package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withJWTConfig(t *testing.T, cfg *JWTConfig) {
	t.Helper()
	prev := GetJWTConfig()
	SetJWTConfig(cfg)
	t.Cleanup(func() { SetJWTConfig(prev) })
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== JWT ====================

func TestJWTAuth_DisabledWithoutSecret(t *testing.T) {
	withJWTConfig(t, &JWTConfig{Issuer: "catalog-admin"})

	w := get(authRouter(), "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"username":""}`, w.Body.String())

	_, err := GenerateAccessToken(1, "admin", "admin")
	assert.Error(t, err, "未配置密钥时不应签发 token")
}

func TestJWTAuth(t *testing.T) {
	withJWTConfig(t, &JWTConfig{SecretKey: "test-secret", Issuer: "catalog-admin", AccessTokenTTL: time.Hour})
	r := authRouter()

	token, err := GenerateAccessToken(7, "alice", "admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少 header", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"签名错误", "Bearer " + token + "x", http.StatusUnauthorized},
		{"合法 token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := get(r, "/me", "Bearer "+token)
	assert.JSONEq(t, `{"user_id":7,"username":"alice"}`, w.Body.String())
}

func TestJWTAuth_WrongIssuer(t *testing.T) {
	withJWTConfig(t, &JWTConfig{SecretKey: "test-secret", Issuer: "other", AccessTokenTTL: time.Hour})
	token, err := GenerateAccessToken(1, "bob", "admin")
	require.NoError(t, err)

	SetJWTConfig(&JWTConfig{SecretKey: "test-secret", Issuer: "catalog-admin"})
	w := get(authRouter(), "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ==================== 限流 ====================

func TestBulkRateLimiter_Check(t *testing.T) {
	limiter := NewBulkRateLimiter(1, 2)

	assert.True(t, limiter.Check("a").Allowed)
	assert.True(t, limiter.Check("a").Allowed)

	res := limiter.Check("a")
	assert.False(t, res.Allowed, "超过突发上限应被拒绝")
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// 不同 key 互不影响
	assert.True(t, limiter.Check("b").Allowed)

	limiter.Reset("a")
	assert.True(t, limiter.Check("a").Allowed)
}

func TestBulkRateLimiter_Cleanup(t *testing.T) {
	limiter := NewBulkRateLimiter(6, 1)
	limiter.Check("a")
	limiter.Check("b")

	assert.Equal(t, 0, limiter.Cleanup(time.Hour))
	assert.Equal(t, 2, limiter.Cleanup(-time.Second))
}

func TestBulkRateLimit_Middleware(t *testing.T) {
	limiter := NewBulkRateLimiter(1, 1)
	r := gin.New()
	r.GET("/export", BulkRateLimit(limiter, "export"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	assert.Equal(t, http.StatusOK, get(r, "/export", "").Code)

	w := get(r, "/export", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"action":"export"`)
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "操作过于频繁，请 10 秒后重试", formatRetryMessage(10))
	assert.Equal(t, "操作过于频繁，请 2 分钟后重试", formatRetryMessage(120))
	assert.Equal(t, "操作过于频繁，请 1 分 5 秒后重试", formatRetryMessage(65))
}

// ==================== 请求日志 ====================

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	assert.Equal(t, http.StatusInternalServerError, get(r, "/fail", "").Code)
}
