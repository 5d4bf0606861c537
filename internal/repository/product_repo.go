package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog_admin_v1_202610/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ProductFilter, page, perPage int) ([]model.Product, int64, error)
	ListAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)

	// 标签关联，整体替换
	ReplaceTags(ctx context.Context, productID int64, tagIDs []int64) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
}

// ==================== 过滤条件 ====================

// 允许排序的字段
var sortableColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"created_at": true,
	"updated_at": true,
}

// ProductFilter 列表和导出共用的过滤条件
type ProductFilter struct {
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Sort      string
	Direction string // asc / desc，由调用方给默认值
}

// SortColumn 校验后的排序字段，不在白名单内返回空
func (f ProductFilter) SortColumn() string {
	if sortableColumns[f.Sort] {
		return f.Sort
	}
	return ""
}

// Desc 方向是否为降序
func (f ProductFilter) Desc() bool {
	return strings.EqualFold(f.Direction, "desc")
}

func (f ProductFilter) apply(query *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if col := f.SortColumn(); col != "" {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc()})
	}
	return query
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	// 标签由 ReplaceTags 单独维护
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Tags", orderTags).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter, page, perPage int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	countQuery := ProductFilter{Search: filter.Search, MinPrice: filter.MinPrice, MaxPrice: filter.MaxPrice}.
		apply(r.db.WithContext(ctx).Model(&model.Product{}))
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	offset := (page - 1) * perPage
	err := filter.apply(r.db.WithContext(ctx).Model(&model.Product{})).
		Preload("Tags", orderTags).
		Order("created_at DESC").
		Order("id DESC").
		Limit(perPage).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) ListAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	err := filter.apply(r.db.WithContext(ctx).Model(&model.Product{})).
		Preload("Tags", orderTags).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ReplaceTags(ctx context.Context, productID int64, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]model.ProductTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			rows = append(rows, model.ProductTag{ProductID: productID, TagID: id, CreatedAt: now, UpdatedAt: now})
		}
		return tx.Create(&rows).Error
	})
}

// orderTags 关联标签按创建顺序返回
func orderTags(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
