package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog_admin_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// TagRepository 标签仓储接口
type TagRepository interface {
	// FindOrCreate 按 name_key 查找，不存在则创建，created 表示本次是否新建
	FindOrCreate(ctx context.Context, name string) (tag *model.Tag, created bool, err error)
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	ListAll(ctx context.Context) ([]model.Tag, error)
	Count(ctx context.Context) (int64, error)

	WithTx(tx *gorm.DB) TagRepository
}

// ==================== 仓储实现 ====================

type tagRepo struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓储
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepo{db: tx}
}

func (r *tagRepo) FindOrCreate(ctx context.Context, name string) (*model.Tag, bool, error) {
	tag, err := r.GetByName(ctx, name)
	if err == nil {
		return tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// 并发插入同名标签时 ON CONFLICT 直接跳过，再查一次拿到对方写入的记录
	// 放在嵌套事务里，外层事务在 Postgres 上不会因唯一键冲突被标记为失败
	newTag := &model.Tag{Name: name, NameKey: model.TagKey(name)}
	var inserted int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoNothing: true,
		}).Create(newTag)
		inserted = res.RowsAffected
		return res.Error
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}
	if err == nil && inserted > 0 {
		return newTag, true, nil
	}

	tag, err = r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return tag, false, nil
}

func (r *tagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).
		Where("name_key = ?", model.TagKey(name)).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) ListAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name_key ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Tag{}).Count(&n).Error
	return n, err
}
