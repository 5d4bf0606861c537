package controller

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试环境 ====================

type testServer struct {
	router   *gin.Engine
	uow      *repository.CatalogUnitOfWork
	importer *service.ImportService
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	return setupServerWithConfig(t, service.DefaultImportConfig())
}

func setupServerWithConfig(t *testing.T, cfg service.ImportConfig) *testServer {
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
	importer := service.NewImportService(uow, tags, v, logs, cfg, nil)
	exporter := service.NewExportService(uow.Products, storage, nil)
	products := service.NewProductService(uow, tags, storage, v, nil)

	productCtl := NewProductController(products, nil)
	transferCtl := NewTransferController(importer, exporter, nil)
	tagCtl := NewTagController(tags, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/products", productCtl.GetProducts)
	api.POST("/products", productCtl.CreateProduct)
	api.POST("/products/import", transferCtl.ImportProducts)
	api.GET("/products/export", transferCtl.ExportProducts)
	api.GET("/products/:id", productCtl.GetProduct)
	api.PUT("/products/:id", productCtl.UpdateProduct)
	api.DELETE("/products/:id", productCtl.DeleteProduct)
	api.GET("/tags", tagCtl.GetTags)
	api.GET("/import-logs", transferCtl.GetImportLogs)
	api.GET("/import-logs/stats", transferCtl.GetImportStats)

	return &testServer{router: r, uow: uow, importer: importer}
}

// ==================== 请求构造辅助 ====================

func performRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// formFile multipart 中的一个文件字段
type formFile struct {
	field    string
	filename string
	data     []byte
}

func performMultipart(t *testing.T, r http.Handler, method, path string, fields map[string][]string, files ...formFile) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func buildCSV(t *testing.T, rows [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))
	return buf.Bytes()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "响应不是 JSON: %s", w.Body.String())
	return out
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
