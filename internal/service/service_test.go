package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"gorm.io/gorm"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/testutil"
)

// ==================== 测试环境 ====================

type testEnv struct {
	db       *gorm.DB
	uow      *repository.CatalogUnitOfWork
	logs     repository.ImportLogRepository
	storage  *StorageService
	tags     *TagService
	importer *ImportService
	exporter *ExportService
	products *ProductService
	cache    *memTagCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, DefaultImportConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg ImportConfig) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	uow := repository.NewCatalogUnitOfWork(db)
	logs := repository.NewImportLogRepository(db)

	storage, err := NewStorageService(StorageConfig{
		Provider:  "local",
		BasePath:  t.TempDir(),
		PublicURL: "http://localhost:8080/storage",
	})
	if err != nil {
		t.Fatalf("初始化存储失败: %v", err)
	}

	cache := &memTagCache{}
	tags := NewTagService(uow.Tags, cache, nil)
	v := NewRowValidator()

	return &testEnv{
		db:       db,
		uow:      uow,
		logs:     logs,
		storage:  storage,
		tags:     tags,
		importer: NewImportService(uow, tags, v, logs, cfg, nil),
		exporter: NewExportService(uow.Products, storage, nil),
		products: NewProductService(uow, tags, storage, v, nil),
		cache:    cache,
	}
}

func (e *testEnv) countProducts(t *testing.T) int64 {
	t.Helper()
	var n int64
	e.db.Model(&model.Product{}).Count(&n)
	return n
}

func (e *testEnv) allTags(t *testing.T) []model.Tag {
	t.Helper()
	var tags []model.Tag
	e.db.Order("id ASC").Find(&tags)
	return tags
}

// memTagCache 内存版标签缓存
type memTagCache struct {
	names        []string
	ok           bool
	invalidated  int
	onInvalidate func()
}

func (c *memTagCache) Get(ctx context.Context) ([]string, bool, error) {
	return c.names, c.ok, nil
}

func (c *memTagCache) Set(ctx context.Context, names []string) error {
	c.names, c.ok = names, true
	return nil
}

func (c *memTagCache) Invalidate(ctx context.Context) error {
	c.names, c.ok = nil, false
	c.invalidated++
	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	return nil
}

// ==================== 表格构造 ====================

func buildCSV(t *testing.T, rows [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("生成 CSV 失败: %v", err)
	}
	return buf.Bytes()
}

func csvFile(t *testing.T, name string, rows [][]string) ImportFile {
	t.Helper()
	data := buildCSV(t, rows)
	return ImportFile{Name: name, Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
