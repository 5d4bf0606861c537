package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/bootstrap"
	"catalog_admin_v1_202610/internal/config"
	"catalog_admin_v1_202610/pkg/logger"
)

// @title Catalog Admin API
// @version 1.0
// @description 商品目录管理：CRUD、批量导入导出、标签
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// 3. 初始化依赖
	ctx := context.Background()
	deps, err := bootstrap.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("初始化依赖失败", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	if err := deps.Migrate(ctx); err != nil {
		zl.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 启动定时任务
	tasks := deps.TaskManager()
	if err := tasks.Start(); err != nil {
		zl.Fatal("启动定时任务失败", zap.Error(err))
	}

	// 5. 启动服务
	startServer(deps.Router(), cfg.Server.Port, zl, func(ctx context.Context) {
		tasks.Stop(ctx)
	})
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(r *gin.Engine, port string, zl *zap.Logger, onShutdown func(ctx context.Context)) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		zl.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务强制关闭", zap.Error(err))
	}
	onShutdown(ctx)

	zl.Info("服务已退出")
}
