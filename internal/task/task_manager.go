package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：导入记录清理、限流器空闲 key 回收
type TaskManager struct {
	Cron *cron.Cron

	cleanupTask *ImportLogCleanupTask
	limiter     *middleware.BulkRateLimiter
	logger      *zap.Logger

	cfg *TaskManagerConfig
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ImportLogRepo repository.ImportLogRepository
	BulkLimiter   *middleware.BulkRateLimiter
	Logger        *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 导入记录清理
	ImportLogRetentionDays int
	ImportLogCleanupSpec   string

	// 限流器回收
	LimiterSweepSpec string
	LimiterIdle      time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		ImportLogRetentionDays: 30,
		ImportLogCleanupSpec:   "0 30 3 * * *", // 每天 03:30
		LimiterSweepSpec:       "0 */10 * * * *",
		LimiterIdle:            30 * time.Minute,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := logger.OrNop(deps.Logger)

	tm := &TaskManager{
		// 支持秒级控制；上一次未结束时跳过本次
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{log.Sugar()}), cron.SkipIfStillRunning(cronLogger{log.Sugar()})),
		),
		limiter: deps.BulkLimiter,
		logger:  log,
		cfg:     cfg,
	}

	if deps.ImportLogRepo != nil {
		tm.cleanupTask = NewImportLogCleanupTask(deps.ImportLogRepo, cfg.ImportLogRetentionDays, log)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 注册并启动所有任务
func (tm *TaskManager) Start() error {
	tm.logger.Info("[TaskManager] 正在启动后台任务...")

	if tm.cleanupTask != nil {
		if _, err := tm.Cron.AddFunc(tm.cfg.ImportLogCleanupSpec, tm.cleanupTask.run); err != nil {
			return fmt.Errorf("注册导入记录清理任务失败: %w", err)
		}
	}

	if tm.limiter != nil {
		idle := tm.cfg.LimiterIdle
		_, err := tm.Cron.AddFunc(tm.cfg.LimiterSweepSpec, func() {
			if n := tm.limiter.Cleanup(idle); n > 0 {
				tm.logger.Debug("[TaskManager] 回收限流 key", zap.Int("removed", n))
			}
		})
		if err != nil {
			return fmt.Errorf("注册限流回收任务失败: %w", err)
		}
	}

	tm.Cron.Start()
	tm.logger.Info("[TaskManager] 后台任务已全部启动", zap.Int("jobs", len(tm.Cron.Entries())))
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (tm *TaskManager) Stop(ctx context.Context) {
	tm.logger.Info("[TaskManager] 正在停止后台任务...")

	done := tm.Cron.Stop()
	select {
	case <-done.Done():
		tm.logger.Info("[TaskManager] 后台任务已全部停止")
	case <-ctx.Done():
		tm.logger.Warn("[TaskManager] 等待任务结束超时")
	}
}

// ==================== 手动触发接口 ====================

// TriggerImportLogCleanup 立即清理一次
func (tm *TaskManager) TriggerImportLogCleanup(ctx context.Context) (int64, error) {
	if tm.cleanupTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.cleanupTask.Execute(ctx)
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"import_log_cleanup": tm.cleanupTask != nil,
		"limiter_sweep":      tm.limiter != nil,
	}
}

// ==================== cron 日志适配 ====================

// cronLogger 把 cron 内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("[Cron] "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("[Cron] "+msg, append(keysAndValues, "error", err)...)
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
