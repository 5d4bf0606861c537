package repository

import (
	"context"

	"gorm.io/gorm"
)

// CatalogUnitOfWork 商品目录工作单元（事务）
type CatalogUnitOfWork struct {
	db       *gorm.DB
	Products ProductRepository
	Tags     TagRepository
}

// NewCatalogUnitOfWork 创建工作单元
func NewCatalogUnitOfWork(db *gorm.DB) *CatalogUnitOfWork {
	return &CatalogUnitOfWork{
		db:       db,
		Products: NewProductRepository(db),
		Tags:     NewTagRepository(db),
	}
}

// Transaction 执行事务，fn 内只能使用 uow 上的仓储
func (u *CatalogUnitOfWork) Transaction(ctx context.Context, fn func(uow *CatalogUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &CatalogUnitOfWork{
			db:       tx,
			Products: NewProductRepository(tx),
			Tags:     NewTagRepository(tx),
		}
		return fn(txUow)
	})
}
