package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
)

// ImportLogCleanupTask 清理过期导入记录
type ImportLogCleanupTask struct {
	logRepo       repository.ImportLogRepository
	retentionDays int
	logger        *zap.Logger

	// 同一时间只跑一次
	mu sync.Mutex
	// now 测试时替换
	now func() time.Time
}

func NewImportLogCleanupTask(logRepo repository.ImportLogRepository, retentionDays int, log *zap.Logger) *ImportLogCleanupTask {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &ImportLogCleanupTask{
		logRepo:       logRepo,
		retentionDays: retentionDays,
		logger:        logger.OrNop(log),
		now:           time.Now,
	}
}

// Execute 删除 retentionDays 天之前的记录，返回删除条数
func (t *ImportLogCleanupTask) Execute(ctx context.Context) (int64, error) {
	if !t.mu.TryLock() {
		t.logger.Info("[ImportLogCleanup] 上一次清理仍在执行，跳过")
		return 0, nil
	}
	defer t.mu.Unlock()

	cutoff := t.now().AddDate(0, 0, -t.retentionDays)
	deleted, err := t.logRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理导入记录失败: %w", err)
	}

	t.logger.Info("[ImportLogCleanup] 清理完成",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// run 供 cron 调用
func (t *ImportLogCleanupTask) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := t.Execute(ctx); err != nil {
		t.logger.Error("[ImportLogCleanup] 执行失败", zap.Error(err))
	}
}
