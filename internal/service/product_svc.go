package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
)

var ErrProductNotFound = errors.New("product not found")

// PerPageOptions 列表每页条数可选值
var PerPageOptions = []int{2, 5, 10, 25, 50, 100}

// DefaultPerPage 不在可选值内时使用
const DefaultPerPage = 2

// MaxImageSize 商品图片上限 2048 KB
const MaxImageSize = 2048 * 1024

// ImageTooLargeMessage 图片超过上限的提示
var ImageTooLargeMessage = fieldMessage("image", "image_size")

var allowedImageMIME = []string{"image/jpeg", "image/png", "image/svg+xml"}

// NormalizePerPage 非法值回落到默认值
func NormalizePerPage(n int) int {
	for _, opt := range PerPageOptions {
		if n == opt {
			return n
		}
	}
	return DefaultPerPage
}

// ==================== 表单 ====================

// ImageUpload 上传的图片
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductForm 新建/编辑商品
// TagsPresent 为 false 时编辑不动标签
type ProductForm struct {
	Name        string       `col:"name" validate:"required,max=255"`
	Description string       `col:"description" validate:"required,max=1000"`
	Price       string       `col:"price" validate:"required,decimal,nonnegative,maxprice"`
	Tags        []string     `col:"tags" validate:"dive,max=50"`
	TagsPresent bool         `col:"-"`
	Image       *ImageUpload `col:"-"`
}

// ValidationError 表单校验失败
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// ==================== ProductService ====================

type ProductService struct {
	uow       *repository.CatalogUnitOfWork
	products  repository.ProductRepository
	tags      *TagService
	storage   *StorageService
	validator *RowValidator
	logger    *zap.Logger
}

func NewProductService(
	uow *repository.CatalogUnitOfWork,
	tags *TagService,
	storage *StorageService,
	validator *RowValidator,
	log *zap.Logger,
) *ProductService {
	return &ProductService{
		uow:       uow,
		products:  uow.Products,
		tags:      tags,
		storage:   storage,
		validator: validator,
		logger:    logger.OrNop(log),
	}
}

// List 列表，方向未指定时按降序
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, page, perPage int) ([]model.Product, int64, error) {
	if filter.Direction == "" {
		filter.Direction = "desc"
	}
	return s.products.List(ctx, filter, page, NormalizePerPage(perPage))
}

// Get 商品详情
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create 新建商品，图片必填
func (s *ProductService) Create(ctx context.Context, form ProductForm) (*model.Product, error) {
	if err := s.validate(form, true); err != nil {
		return nil, err
	}

	key, err := s.storage.Upload(ctx, form.Image.Data, form.Image.Filename, "")
	if err != nil {
		return nil, fmt.Errorf("上传商品图片失败: %w", err)
	}

	price, _ := decimal.NewFromString(strings.TrimSpace(form.Price))
	desc := strings.TrimSpace(form.Description)
	original := form.Image.Filename
	p := &model.Product{
		Name:              strings.TrimSpace(form.Name),
		Description:       &desc,
		Price:             price.Round(2),
		Image:             &key,
		ImageOriginalName: &original,
	}

	tagsCreated := false
	err = s.uow.Transaction(ctx, func(tx *repository.CatalogUnitOfWork) error {
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		if form.TagsPresent {
			if _, created, err := s.tags.SyncProductTags(ctx, tx, p.ID, form.Tags); err != nil {
				return err
			} else if created {
				tagsCreated = true
			}
		}
		return nil
	})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, fmt.Errorf("创建商品失败: %w", err)
	}
	if tagsCreated {
		s.tags.InvalidateCache(ctx)
	}

	s.logger.Info("[Product] 创建商品", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return s.Get(ctx, p.ID)
}

// Update 编辑商品，上传新图片时删除旧图片
func (s *ProductService) Update(ctx context.Context, id int64, form ProductForm) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(form, false); err != nil {
		return nil, err
	}

	// 外部 URL 不归本服务管理，替换时不删除
	var oldStored string
	if p.Image != nil && !p.HasExternalImage() {
		oldStored = *p.Image
	}
	var newKey string
	if form.Image != nil {
		newKey, err = s.storage.Upload(ctx, form.Image.Data, form.Image.Filename, "")
		if err != nil {
			return nil, fmt.Errorf("上传商品图片失败: %w", err)
		}
		original := form.Image.Filename
		p.Image = &newKey
		p.ImageOriginalName = &original
	}

	price, _ := decimal.NewFromString(strings.TrimSpace(form.Price))
	desc := strings.TrimSpace(form.Description)
	p.Name = strings.TrimSpace(form.Name)
	p.Description = &desc
	p.Price = price.Round(2)

	tagsCreated := false
	err = s.uow.Transaction(ctx, func(tx *repository.CatalogUnitOfWork) error {
		if err := tx.Products.Update(ctx, p); err != nil {
			return err
		}
		if form.TagsPresent {
			if _, created, err := s.tags.SyncProductTags(ctx, tx, p.ID, form.Tags); err != nil {
				return err
			} else if created {
				tagsCreated = true
			}
		}
		return nil
	})
	if err != nil {
		if newKey != "" {
			s.removeImage(ctx, newKey)
		}
		return nil, fmt.Errorf("更新商品失败: %w", err)
	}
	if tagsCreated {
		s.tags.InvalidateCache(ctx)
	}

	if newKey != "" && oldStored != "" {
		s.removeImage(ctx, oldStored)
	}

	s.logger.Info("[Product] 更新商品", zap.Int64("id", p.ID))
	return s.Get(ctx, p.ID)
}

// Delete 软删除，图片保留
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除商品失败: %w", err)
	}
	s.logger.Info("[Product] 删除商品", zap.Int64("id", id))
	return nil
}

// ImageURL 商品图片访问地址
func (s *ProductService) ImageURL(p *model.Product) string {
	return s.storage.ResolveURL(p.Image)
}

func (s *ProductService) validate(form ProductForm, imageRequired bool) error {
	fields := s.validator.Fields(form)
	if fields == nil {
		fields = make(map[string][]string)
	}

	if form.Image == nil {
		if imageRequired {
			fields["image"] = []string{fieldMessage("image", "required")}
		}
	} else {
		var msgs []string
		if !isAllowedImage(form.Image.Data) {
			msgs = append(msgs, fieldMessage("image", "image_type"))
		}
		if len(form.Image.Data) > MaxImageSize {
			msgs = append(msgs, ImageTooLargeMessage)
		}
		if len(msgs) > 0 {
			fields["image"] = msgs
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isAllowedImage(data []byte) bool {
	detected := mimetype.Detect(data)
	for _, m := range allowedImageMIME {
		if detected.Is(m) {
			return true
		}
	}
	return false
}

// removeImage 清理图片失败只记日志
func (s *ProductService) removeImage(ctx context.Context, key string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("[Product] 删除图片失败", zap.String("key", key), zap.Error(err))
	}
}
