package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"catalog_admin_v1_202610/internal/controller"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()

	db := testutil.NewDB(t)
	uow := repository.NewCatalogUnitOfWork(db)
	logs := repository.NewImportLogRepository(db)
	storage, err := service.NewStorageService(service.StorageConfig{
		Provider:  "local",
		BasePath:  t.TempDir(),
		PublicURL: "http://localhost:8080/storage",
	})
	require.NoError(t, err)

	tags := service.NewTagService(uow.Tags, nil, nil)
	v := service.NewRowValidator()

	r := gin.New()
	InitRoutes(r, opts,
		controller.NewProductController(service.NewProductService(uow, tags, storage, v, nil), nil),
		controller.NewTransferController(
			service.NewImportService(uow, tags, v, logs, service.DefaultImportConfig(), nil),
			service.NewExportService(uow.Products, storage, nil), nil),
		controller.NewTagController(tags, nil),
	)
	return r
}

func performRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t, Options{})
	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/healthz", "").Code)

	core, recorded := observer.New(zap.ErrorLevel)
	r = setupRouter(t, Options{
		HealthCheck: func(ctx context.Context) error { return errors.New("dial tcp 10.0.0.5:5432: connection refused") },
		Logger:      zap.New(core),
	})
	w := performRequest(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5", "不应向调用方暴露错误原因")
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())

	// 原因写入日志
	require.Equal(t, 1, recorded.Len())
	assert.Contains(t, recorded.All()[0].ContextMap()["error"], "connection refused")
}

func TestSwaggerDoc(t *testing.T) {
	r := setupRouter(t, Options{})
	w := performRequest(r, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/products/import")
}

func TestStaticStorage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products", "a.txt"), []byte("hello"), 0o644))

	r := setupRouter(t, Options{StorageDir: dir})
	w := performRequest(r, http.MethodGet, "/storage/products/a.txt", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestRoutes_ExportNotShadowedByID(t *testing.T) {
	r := setupRouter(t, Options{})
	w := performRequest(r, http.MethodGet, "/api/products/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestRoutes_BulkRateLimit(t *testing.T) {
	r := setupRouter(t, Options{BulkLimiter: middleware.NewBulkRateLimiter(1, 1)})

	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/api/products/export", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, performRequest(r, http.MethodGet, "/api/products/export", "").Code)
	// 列表不限流
	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/api/products", "").Code)
}

func TestRoutes_RequireToken(t *testing.T) {
	prev := middleware.GetJWTConfig()
	middleware.SetJWTConfig(&middleware.JWTConfig{SecretKey: "router-secret", Issuer: "catalog-admin", AccessTokenTTL: time.Hour})
	t.Cleanup(func() { middleware.SetJWTConfig(prev) })

	r := setupRouter(t, Options{})
	assert.Equal(t, http.StatusUnauthorized, performRequest(r, http.MethodGet, "/api/products", "").Code)
	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/healthz", "").Code)

	token, err := middleware.GenerateAccessToken(1, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/api/products", token).Code)
}
