// Package bootstrap 组装应用依赖，供 HTTP 服务和 catalogctl 共用
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog_admin_v1_202610/internal/config"
	"catalog_admin_v1_202610/internal/controller"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/router"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/internal/task"
	"catalog_admin_v1_202610/pkg/cache"
	"catalog_admin_v1_202610/pkg/database"
	"catalog_admin_v1_202610/pkg/logger"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	BulkLimiter *middleware.BulkRateLimiter
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers

	// 由 New 打开的连接才在 Close 时关闭
	ownsDB bool
}

// Repositories 仓库集合
type Repositories struct {
	Catalog   *repository.CatalogUnitOfWork
	ImportLog repository.ImportLogRepository
}

// Services 服务集合
type Services struct {
	Storage *service.StorageService
	Tag     *service.TagService
	Import  *service.ImportService
	Export  *service.ExportService
	Product *service.ProductService
}

// Controllers 控制器集合
type Controllers struct {
	Product  *controller.ProductController
	Transfer *controller.TransferController
	Tag      *controller.TagController
}

// ==================== 初始化函数 ====================

// New 连接数据库 / Redis 并组装依赖
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	log = logger.OrNop(log)

	db, err := database.Open(database.Options{
		DSN:      cfg.Database.DSN(),
		LogLevel: cfg.Database.LogLevel,
	}, log)
	if err != nil {
		return nil, err
	}

	deps, err := NewWithDB(ctx, cfg, db, log)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	deps.ownsDB = true
	return deps, nil
}

// NewWithDB 使用已有的数据库连接组装依赖，Close 不关闭该连接
func NewWithDB(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*Dependencies, error) {
	log = logger.OrNop(log)

	deps := &Dependencies{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		BulkLimiter: middleware.NewBulkRateLimiter(cfg.Server.BulkRatePerMinute, cfg.Server.BulkBurst),
	}

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey: cfg.JWT.Secret,
		Issuer:    cfg.JWT.Issuer,
	})

	// -------- Redis (可选)，不可用时退回进程内缓存 --------
	var tagCache service.TagCache = cache.NewMemoryTagCache(cache.TagListTTL)
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// 缓存不可用不影响主流程
			log.Warn("[Bootstrap] Redis 不可用，标签缓存使用进程内存", zap.Error(err))
		} else {
			deps.Redis = client
			tagCache = cache.NewTagCache(client)
		}
	}

	// -------- Repo 层 --------
	deps.Repos = &Repositories{
		Catalog:   repository.NewCatalogUnitOfWork(db),
		ImportLog: repository.NewImportLogRepository(db),
	}

	// -------- 服务层 --------
	storageSvc, err := service.NewStorageService(storageConfig(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("初始化存储服务失败: %w", err)
	}

	validator := service.NewRowValidator()
	tagSvc := service.NewTagService(deps.Repos.Catalog.Tags, tagCache, log)
	deps.Services = &Services{
		Storage: storageSvc,
		Tag:     tagSvc,
		Import: service.NewImportService(deps.Repos.Catalog, tagSvc, validator, deps.Repos.ImportLog, service.ImportConfig{
			MaxFileSize: cfg.Import.MaxFileSizeKB * 1024,
			BatchSize:   cfg.Import.BatchSize,
		}, log),
		Export:  service.NewExportService(deps.Repos.Catalog.Products, storageSvc, log),
		Product: service.NewProductService(deps.Repos.Catalog, tagSvc, storageSvc, validator, log),
	}

	// -------- Controller 层 --------
	deps.Controllers = &Controllers{
		Product:  controller.NewProductController(deps.Services.Product, log),
		Transfer: controller.NewTransferController(deps.Services.Import, deps.Services.Export, log),
		Tag:      controller.NewTagController(deps.Services.Tag, log),
	}

	return deps, nil
}

func storageConfig(c config.StorageConfig) service.StorageConfig {
	return service.StorageConfig{
		Provider:  c.Provider,
		Bucket:    c.Bucket,
		Region:    c.Region,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
		CDNDomain: c.CDNDomain,
		BasePath:  c.BasePath,
		PublicURL: c.PublicURL,
	}
}

// ==================== 组装 ====================

// Migrate 建表 / 补字段
func (d *Dependencies) Migrate(ctx context.Context) error {
	return database.NewInitializer(d.DB, model.InitOptions(), d.Logger).Initialize(ctx)
}

// Router 创建 gin 引擎并注册路由
func (d *Dependencies) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	opts := router.Options{
		BulkLimiter: d.BulkLimiter,
		HealthCheck: d.Ping,
		Logger:      d.Logger,
	}
	if d.Config.Storage.Provider == "local" {
		opts.StorageDir = d.Config.Storage.BasePath
	}

	router.InitRoutes(r, opts, d.Controllers.Product, d.Controllers.Transfer, d.Controllers.Tag)
	return r
}

// TaskManager 创建后台任务管理器
func (d *Dependencies) TaskManager() *task.TaskManager {
	return task.NewTaskManager(&task.TaskManagerDeps{
		ImportLogRepo: d.Repos.ImportLog,
		BulkLimiter:   d.BulkLimiter,
		Logger:        d.Logger,
	}, &task.TaskManagerConfig{
		ImportLogRetentionDays: d.Config.Tasks.ImportLogRetentionDays,
		ImportLogCleanupSpec:   d.Config.Tasks.ImportLogCleanupSpec,
		LimiterSweepSpec:       task.DefaultConfig().LimiterSweepSpec,
		LimiterIdle:            task.DefaultConfig().LimiterIdle,
	})
}

// Ping 检查数据库连接
func (d *Dependencies) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 释放连接
func (d *Dependencies) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.ownsDB {
		if sqlDB, err := d.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
