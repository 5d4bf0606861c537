// Package testutil 测试公用的内存数据库
package testutil

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/pkg/database"
)

// NewDB 创建已迁移的 sqlite 内存库
// 只开一个连接，:memory: 每个连接是独立的库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.NewInitializer(db, model.InitOptions(), nil).Initialize(context.Background()); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}
