package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JoinTable 自定义多对多中间表
// 必须在 AutoMigrate 之前注册，否则 GORM 会按默认结构建表
type JoinTable struct {
	Model     interface{}
	Field     string
	JoinModel interface{}
}

// InitOptions 初始化选项
type InitOptions struct {
	Models     []interface{}
	JoinTables []JoinTable
}

// Initializer 数据库初始化器
type Initializer struct {
	db     *gorm.DB
	opts   InitOptions
	logger *zap.Logger
}

// NewInitializer 创建初始化器
func NewInitializer(db *gorm.DB, opts InitOptions, log *zap.Logger) *Initializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Initializer{db: db, opts: opts, logger: log}
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	start := time.Now()
	db := i.db.WithContext(ctx)

	// 1. 注册中间表
	for _, jt := range i.opts.JoinTables {
		if err := db.SetupJoinTable(jt.Model, jt.Field, jt.JoinModel); err != nil {
			return fmt.Errorf("注册中间表 %s 失败: %w", jt.Field, err)
		}
	}

	// 2. AutoMigrate
	if len(i.opts.Models) > 0 {
		if err := db.AutoMigrate(i.opts.Models...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	i.logger.Info("[DB] 初始化完成",
		zap.Int("models", len(i.opts.Models)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
