package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/pkg/logger"
)

// TagCache 标签词表缓存
// Get 未命中返回 ok=false，缓存故障只记日志不影响主流程
type TagCache interface {
	Get(ctx context.Context) (names []string, ok bool, err error)
	Set(ctx context.Context, names []string) error
	Invalidate(ctx context.Context) error
}

// ==================== 标签解析 ====================

// ParseTagNames 逗号分隔的标签串转标签名列表
// 每段去掉首尾空白，丢弃空段，完全相同的重复名只保留第一次出现
func ParseTagNames(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return NormalizeTagNames(strings.Split(raw, ","))
}

// NormalizeTagNames 标签名列表去空白、去空、去重，保持首次出现顺序
// 列表元素内的逗号不再拆分
func NormalizeTagNames(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ==================== TagService ====================

// TagService 标签服务
type TagService struct {
	tagRepo repository.TagRepository
	cache   TagCache
	logger  *zap.Logger
}

// NewTagService 创建标签服务，cache 可以为 nil
func NewTagService(tagRepo repository.TagRepository, cache TagCache, log *zap.Logger) *TagService {
	return &TagService{
		tagRepo: tagRepo,
		cache:   cache,
		logger:  logger.OrNop(log),
	}
}

// Resolve 标签名解析为标签实体
// repo 传事务内的仓储，保证和商品写入在同一事务
// 结果与去重后的名字一一对应；大小写不同的名字落到同一个标签时只保留一次
// created 表示新建了标签，调用方在事务提交后调用 InvalidateCache
func (s *TagService) Resolve(ctx context.Context, repo repository.TagRepository, names []string) (tags []model.Tag, created bool, err error) {
	names = NormalizeTagNames(names)
	tags = make([]model.Tag, 0, len(names))
	seen := make(map[int64]struct{}, len(names))

	for _, name := range names {
		tag, isNew, err := repo.FindOrCreate(ctx, name)
		if err != nil {
			return nil, false, fmt.Errorf("保存标签 %q 失败: %w", name, err)
		}
		created = created || isNew
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		tags = append(tags, *tag)
	}
	return tags, created, nil
}

// SyncProductTags 用 names 整体替换商品的标签
func (s *TagService) SyncProductTags(ctx context.Context, uow *repository.CatalogUnitOfWork, productID int64, names []string) ([]model.Tag, bool, error) {
	tags, created, err := s.Resolve(ctx, uow.Tags, names)
	if err != nil {
		return nil, false, err
	}

	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	if err := uow.Products.ReplaceTags(ctx, productID, ids); err != nil {
		return nil, false, fmt.Errorf("同步商品 %d 标签失败: %w", productID, err)
	}
	return tags, created, nil
}

// ListNames 全部标签名，按名字排序
func (s *TagService) ListNames(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		names, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("[Tag] 读取标签缓存失败", zap.Error(err))
		} else if ok {
			return names, nil
		}
	}

	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, names); err != nil {
			s.logger.Warn("[Tag] 写入标签缓存失败", zap.Error(err))
		}
	}
	return names, nil
}

// InvalidateCache 清除标签词表缓存，必须在新标签所在事务提交之后调用
func (s *TagService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// 请求可能已取消，失效缓存不跟随请求上下文
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("[Tag] 清除标签缓存失败", zap.Error(err))
	}
}
