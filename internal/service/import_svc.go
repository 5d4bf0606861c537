package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
	"catalog_admin_v1_202610/pkg/sheet"
)

// ==================== 配置 ====================

// ImportConfig 导入配置
type ImportConfig struct {
	MaxFileSize int64 // 字节
	BatchSize   int
}

// DefaultImportConfig 5120 KB，每批 100 行
func DefaultImportConfig() ImportConfig {
	return ImportConfig{MaxFileSize: 5120 * 1024, BatchSize: 100}
}

// ==================== 文件级错误 ====================

const (
	FileErrorTooLarge       = "too_large"
	FileErrorUnsupported    = "unsupported"
	FileErrorCorrupt        = "corrupt"
	FileErrorMissingColumns = "missing_columns"
)

// FileError 整个文件无法导入
type FileError struct {
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return "import file " + e.Reason
	}
	return fmt.Sprintf("import file %s: %v", e.Reason, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// IsFileError 判断错误原因
func IsFileError(err error, reason string) bool {
	var fe *FileError
	return errors.As(err, &fe) && fe.Reason == reason
}

// ==================== 输入输出 ====================

// ImportFile 待导入文件
// Size 为调用方已知的大小 (multipart 头)，未知填 -1
type ImportFile struct {
	Name   string
	Size   int64
	Reader io.Reader
	UserID int64
}

// ImportResult 导入结果
type ImportResult struct {
	Format        sheet.Format `json:"format"`
	TotalRows     int          `json:"total_rows"`
	ImportedCount int          `json:"imported"`
	Batches       int          `json:"batches"`
	Errors        []RowError   `json:"errors"`
	LogID         int64        `json:"log_id,omitempty"`
}

// HasErrors 是否有行校验失败
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// FailedRows 校验失败的行数 (一行可能有多个字段失败)
func (r *ImportResult) FailedRows() int {
	rows := make(map[int]struct{}, len(r.Errors))
	for _, e := range r.Errors {
		rows[e.Row] = struct{}{}
	}
	return len(rows)
}

// ==================== ImportService ====================

// ImportService 批量导入
type ImportService struct {
	uow       *repository.CatalogUnitOfWork
	tags      *TagService
	validator *RowValidator
	logs      repository.ImportLogRepository
	cfg       ImportConfig
	logger    *zap.Logger
}

// NewImportService 创建导入服务，logs 可以为 nil
func NewImportService(
	uow *repository.CatalogUnitOfWork,
	tags *TagService,
	validator *RowValidator,
	logs repository.ImportLogRepository,
	cfg ImportConfig,
	log *zap.Logger,
) *ImportService {
	def := DefaultImportConfig()
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = def.MaxFileSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	return &ImportService{
		uow:       uow,
		tags:      tags,
		validator: validator,
		logs:      logs,
		cfg:       cfg,
		logger:    logger.OrNop(log),
	}
}

// MaxFileSize 单个文件上限 (字节)
func (s *ImportService) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Import 导入一个文件
// 返回的 result 总是非 nil；已提交的批次不会因为后续错误回滚
// error 为 *FileError 时表示文件本身有问题，其余为存储错误
func (s *ImportService) Import(ctx context.Context, file ImportFile) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{Errors: []RowError{}}

	size, err := s.run(ctx, file, result)

	s.writeLog(ctx, file, size, result, err, time.Since(start))

	if err != nil {
		s.logger.Warn("[Import] 导入失败",
			zap.String("file", file.Name),
			zap.Int("imported", result.ImportedCount),
			zap.Error(err))
		return result, err
	}
	s.logger.Info("[Import] 导入完成",
		zap.String("file", file.Name),
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedCount),
		zap.Int("errors", len(result.Errors)),
		zap.Int("batches", result.Batches),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (s *ImportService) run(ctx context.Context, file ImportFile, result *ImportResult) (int64, error) {
	// 1. 大小检查，在解析前完成
	if file.Size > s.cfg.MaxFileSize {
		return file.Size, &FileError{Reason: FileErrorTooLarge,
			Err: fmt.Errorf("%d bytes exceeds %d", file.Size, s.cfg.MaxFileSize)}
	}
	data, err := io.ReadAll(io.LimitReader(file.Reader, s.cfg.MaxFileSize+1))
	if err != nil {
		return 0, fmt.Errorf("读取上传文件失败: %w", err)
	}
	size := int64(len(data))
	if size > s.cfg.MaxFileSize {
		return size, &FileError{Reason: FileErrorTooLarge,
			Err: fmt.Errorf("file exceeds %d bytes", s.cfg.MaxFileSize)}
	}

	// 2. 扩展名 + 内容嗅探
	format, err := sheet.FormatFromName(file.Name)
	if err != nil {
		return size, &FileError{Reason: FileErrorUnsupported, Err: err}
	}
	result.Format = format
	if err := checkContentType(format, data); err != nil {
		return size, &FileError{Reason: FileErrorUnsupported, Err: err}
	}

	// 3. 表头
	reader, err := sheet.Open(format, data)
	if err != nil {
		if errors.Is(err, sheet.ErrEmptySheet) {
			return size, &FileError{Reason: FileErrorMissingColumns, Err: err}
		}
		return size, &FileError{Reason: FileErrorCorrupt, Err: err}
	}
	defer reader.Close()

	columns, err := mapHeader(reader.Header())
	if err != nil {
		return size, err
	}

	// 4. 分批流式处理
	batch := make([]rawRow, 0, s.cfg.BatchSize)
	for {
		cells, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return size, &FileError{Reason: FileErrorCorrupt, Err: err}
		}
		if sheet.IsBlank(cells) {
			continue
		}

		result.TotalRows++
		batch = append(batch, rawRow{num: reader.RowNumber(), values: columns.values(cells)})
		if len(batch) == s.cfg.BatchSize {
			if err := s.processBatch(ctx, batch, result); err != nil {
				return size, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.processBatch(ctx, batch, result); err != nil {
			return size, err
		}
	}
	return size, nil
}

// rawRow 一行原始数据
type rawRow struct {
	num    int
	values map[string]string
}

// processBatch 校验一批，合法行在一个事务里写入
func (s *ImportService) processBatch(ctx context.Context, batch []rawRow, result *ImportResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	candidates := make([]*ProductCandidate, 0, len(batch))
	for _, row := range batch {
		c, rowErrs := s.validator.Validate(row.num, row.values)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil
	}

	tagsCreated := false
	err := s.uow.Transaction(ctx, func(tx *repository.CatalogUnitOfWork) error {
		for _, c := range candidates {
			p := &model.Product{
				Name:        c.Name,
				Description: c.Description,
				Price:       c.Price,
				Image:       c.Image,
			}
			if err := tx.Products.Create(ctx, p); err != nil {
				return fmt.Errorf("写入第 %d 行失败: %w", c.Row, err)
			}
			_, created, err := s.tags.SyncProductTags(ctx, tx, p.ID, c.TagNames)
			if err != nil {
				return fmt.Errorf("写入第 %d 行标签失败: %w", c.Row, err)
			}
			tagsCreated = tagsCreated || created
		}
		return nil
	})
	if err != nil {
		return err
	}
	if tagsCreated {
		s.tags.InvalidateCache(ctx)
	}

	result.ImportedCount += len(candidates)
	result.Batches++
	s.logger.Debug("[Import] 批次提交",
		zap.Int("batch", result.Batches),
		zap.Int("rows", len(candidates)))
	return nil
}

// ==================== 表头映射 ====================

// headerMap 列名 -> 列下标
type headerMap struct {
	names   []string // 按列下标，空表头为 ""
	indexes map[string]int
}

func mapHeader(header []string) (*headerMap, error) {
	h := &headerMap{names: make([]string, len(header)), indexes: make(map[string]int, len(header))}
	for i, cell := range header {
		name := sheet.SnakeHeader(cell)
		if name == "" {
			continue
		}
		// 重复列以第一列为准
		if _, ok := h.indexes[name]; ok {
			continue
		}
		h.names[i] = name
		h.indexes[name] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h.indexes[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &FileError{Reason: FileErrorMissingColumns,
			Err: fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return h, nil
}

// values 一行转成 列名 -> 原始值，缺失单元格为空串
func (h *headerMap) values(cells []string) map[string]string {
	out := make(map[string]string, len(h.indexes))
	for name, idx := range h.indexes {
		if idx < len(cells) {
			out[name] = cells[idx]
		} else {
			out[name] = ""
		}
	}
	return out
}

// ==================== 内容嗅探 ====================

var acceptedMIME = map[sheet.Format][]string{
	sheet.FormatXLSX: {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"},
	sheet.FormatXLS:  {"application/vnd.ms-excel", "application/x-ole-storage"},
	sheet.FormatCSV:  {"text/csv", "text/plain"},
}

// checkContentType 扩展名和文件内容必须一致
func checkContentType(format sheet.Format, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 && format == sheet.FormatCSV {
		return nil
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, accepted := range acceptedMIME[format] {
			if m.Is(accepted) {
				return nil
			}
		}
	}
	return fmt.Errorf("content type %s does not match .%s", detected.String(), format)
}

// ==================== 导入记录 ====================

// writeLog 写入导入记录，失败只记日志
func (s *ImportService) writeLog(ctx context.Context, file ImportFile, size int64, result *ImportResult, runErr error, elapsed time.Duration) {
	if s.logs == nil {
		return
	}

	summary := make(map[string]int)
	for _, e := range result.Errors {
		summary[e.Attribute]++
	}
	raw, _ := json.Marshal(summary)

	entry := &model.ImportLog{
		FileName:       truncate(file.Name, 255),
		Format:         string(result.Format),
		SizeBytes:      size,
		TotalRows:      result.TotalRows,
		ImportedCount:  result.ImportedCount,
		FailedRows:     result.FailedRows(),
		Batches:        result.Batches,
		FailureSummary: datatypes.JSON(raw),
		Status:         importStatus(result, runErr),
		DurationMs:     elapsed.Milliseconds(),
		UserID:         file.UserID,
	}
	if runErr != nil {
		entry.ErrorMsg = truncate(runErr.Error(), 1024)
	}

	// 请求取消后仍然要留下记录
	if err := s.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("[Import] 写入导入记录失败", zap.Error(err))
		return
	}
	result.LogID = entry.ID
}

// RecentLogs 最近的导入记录
func (s *ImportService) RecentLogs(ctx context.Context, limit int) ([]model.ImportLog, error) {
	if s.logs == nil {
		return []model.ImportLog{}, nil
	}
	return s.logs.ListRecent(ctx, limit)
}

// Stats 最近 days 天的导入统计
func (s *ImportService) Stats(ctx context.Context, days int) (*repository.ImportStats, error) {
	if s.logs == nil {
		return &repository.ImportStats{}, nil
	}
	if days <= 0 {
		days = 7
	}
	end := time.Now()
	return s.logs.GetStats(ctx, end.AddDate(0, 0, -days), end)
}

func importStatus(result *ImportResult, runErr error) string {
	switch {
	case runErr == nil && !result.HasErrors():
		return model.ImportStatusSuccess
	case result.ImportedCount > 0:
		return model.ImportStatusPartial
	default:
		return model.ImportStatusFailed
	}
}

// truncate 截断到 n 字节以内，只在字符边界截断，非法 UTF-8 和 NUL 替换掉
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "\uFFFD")
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
