// Package cli catalogctl 命令行
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/bootstrap"
	"catalog_admin_v1_202610/internal/config"
	"catalog_admin_v1_202610/pkg/logger"
)

// Version 构建时通过 ldflags 注入
var Version = "dev"

// Loader 按命令行参数组装依赖
type Loader func(c *cli.Context) (*bootstrap.Dependencies, error)

// DefaultLoader 读取配置并连接数据库
func DefaultLoader(c *cli.Context) (*bootstrap.Dependencies, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if c.Bool("quiet") {
		level = "error"
	}
	zl, err := logger.New(level, "console")
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	return bootstrap.New(c.Context, cfg, zl)
}

// NewApp 创建 catalogctl
func NewApp(out io.Writer, load Loader) *cli.App {
	if load == nil {
		load = DefaultLoader
	}
	r := &runner{out: out, load: load}

	return &cli.App{
		Name:    "catalogctl",
		Usage:   "商品目录批量导入导出工具",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				EnvVars: []string{"CATALOG_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "只输出错误日志",
			},
		},
		Commands: []*cli.Command{
			r.importCmd(),
			r.exportCmd(),
			r.migrateCmd(),
			r.logsCmd(),
			r.cleanupCmd(),
			r.tokenCmd(),
		},
	}
}

// runner 命令共用的依赖加载
type runner struct {
	out  io.Writer
	load Loader
}

// withDeps 加载依赖，执行完成后关闭连接
func (r *runner) withDeps(c *cli.Context, fn func(ctx context.Context, deps *bootstrap.Dependencies) error) error {
	deps, err := r.load(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("初始化失败: %v", err), 2)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Logger.Warn("[CLI] 关闭连接失败", zap.Error(err))
		}
		_ = deps.Logger.Sync()
	}()

	return fn(c.Context, deps)
}
