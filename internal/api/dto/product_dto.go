package dto

import "time"

// ==================== 请求 DTO ====================

// ProductQuery 列表 / 导出的查询参数
// 价格按字符串接收: 空串表示不过滤，直接绑定 decimal 会把空串当成 0
type ProductQuery struct {
	Search    string `form:"search"`
	MinPrice  string `form:"min_price"`
	MaxPrice  string `form:"max_price"`
	Sort      string `form:"sort"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// ==================== 响应 DTO ====================

// ProductResp 商品
type ProductResp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResp 商品分页列表
type ProductListResp struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    []ProductResp `json:"data"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// ProductDetailResp 单个商品
type ProductDetailResp struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    ProductResp `json:"data"`
}

// TagListResp 标签词表
type TagListResp struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

// ErrorResp 通用错误
type ErrorResp struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
