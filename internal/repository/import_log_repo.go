package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"catalog_admin_v1_202610/internal/model"
)

// ==================== 仓储接口 ====================

// ImportLogRepository 导入记录仓储接口
type ImportLogRepository interface {
	Create(ctx context.Context, log *model.ImportLog) error
	GetByID(ctx context.Context, id int64) (*model.ImportLog, error)
	ListRecent(ctx context.Context, limit int) ([]model.ImportLog, error)

	// 统计查询
	GetStats(ctx context.Context, startTime, endTime time.Time) (*ImportStats, error)

	// 清理
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 统计结构 ====================

// ImportStats 导入汇总统计
type ImportStats struct {
	TotalRuns     int64 `json:"total_runs"`
	TotalRows     int64 `json:"total_rows"`
	ImportedCount int64 `json:"imported_count"`
	FailedRows    int64 `json:"failed_rows"`
	SuccessCount  int64 `json:"success_count"`
	PartialCount  int64 `json:"partial_count"`
	FailedCount   int64 `json:"failed_count"`
}

// ==================== 仓储实现 ====================

type importLogRepo struct {
	db *gorm.DB
}

// NewImportLogRepository 创建导入记录仓储
func NewImportLogRepository(db *gorm.DB) ImportLogRepository {
	return &importLogRepo{db: db}
}

func (r *importLogRepo) Create(ctx context.Context, log *model.ImportLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *importLogRepo) GetByID(ctx context.Context, id int64) (*model.ImportLog, error) {
	var log model.ImportLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *importLogRepo) ListRecent(ctx context.Context, limit int) ([]model.ImportLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []model.ImportLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *importLogRepo) GetStats(ctx context.Context, startTime, endTime time.Time) (*ImportStats, error) {
	var stats ImportStats

	query := r.db.WithContext(ctx).Model(&model.ImportLog{})
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at < ?", endTime)
	}

	err := query.Select(`
		COUNT(*) as total_runs,
		COALESCE(SUM(total_rows), 0) as total_rows,
		COALESCE(SUM(imported_count), 0) as imported_count,
		COALESCE(SUM(failed_rows), 0) as failed_rows,
		COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) as success_count,
		COALESCE(SUM(CASE WHEN status = 'partial' THEN 1 ELSE 0 END), 0) as partial_count,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count
	`).Scan(&stats).Error

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteBefore 物理删除过期记录，返回删除条数
func (r *importLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", before).
		Delete(&model.ImportLog{})
	return res.RowsAffected, res.Error
}
