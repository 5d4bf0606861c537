package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
	"catalog_admin_v1_202610/pkg/sheet"
)

// ExportHeaders 导出文件表头，顺序固定
var ExportHeaders = []string{"ID", "Name", "Description", "Price", "Image URL", "Tags", "Created At", "Updated At"}

const (
	ExportTimeLayout     = "2006-01-02 15:04:05"
	exportFileNameLayout = "2006-01-02_15-04-05"
	exportTagSeparator   = ", "
)

// ExportFileName products_2026-10-17_15-04-05.xlsx
func ExportFileName(now time.Time) string {
	return "products_" + now.Format(exportFileNameLayout) + ".xlsx"
}

// ExportService 批量导出
type ExportService struct {
	products repository.ProductRepository
	storage  *StorageService
	logger   *zap.Logger
}

// NewExportService 创建导出服务，storage 为 nil 时图片列输出原始值
func NewExportService(products repository.ProductRepository, storage *StorageService, log *zap.Logger) *ExportService {
	return &ExportService{
		products: products,
		storage:  storage,
		logger:   logger.OrNop(log),
	}
}

// Export 按列表同样的过滤条件导出全部商品，不分页
// 方向未指定时按升序
func (s *ExportService) Export(ctx context.Context, filter repository.ProductFilter, out io.Writer) (int, error) {
	if filter.Direction == "" {
		filter.Direction = "asc"
	}

	products, err := s.products.ListAll(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("查询导出商品失败: %w", err)
	}

	w, err := sheet.NewXLSXWriter(ExportHeaders)
	if err != nil {
		return 0, err
	}

	for i := range products {
		if err := w.WriteRow(s.exportRow(&products[i])); err != nil {
			_ = w.Close()
			return 0, err
		}
	}

	if _, err := w.WriteTo(out); err != nil {
		return 0, fmt.Errorf("写出 xlsx 失败: %w", err)
	}

	s.logger.Info("[Export] 导出完成",
		zap.Int("rows", len(products)),
		zap.String("search", filter.Search),
		zap.String("sort", filter.SortColumn()))
	return len(products), nil
}

func (s *ExportService) exportRow(p *model.Product) []interface{} {
	desc := ""
	if p.Description != nil {
		desc = *p.Description
	}

	return []interface{}{
		p.ID,
		p.Name,
		desc,
		p.Price.InexactFloat64(),
		s.imageURL(p.Image),
		strings.Join(p.TagNames(), exportTagSeparator),
		p.CreatedAt.Format(ExportTimeLayout),
		p.UpdatedAt.Format(ExportTimeLayout),
	}
}

func (s *ExportService) imageURL(image *string) string {
	if s.storage != nil {
		return s.storage.ResolveURL(image)
	}
	if image == nil {
		return ""
	}
	return *image
}
