package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel

	// --- 基本信息 ---
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`

	// 存储 key (products/2026/10/17/<uuid>.png) 或外部绝对 URL
	Image             *string `gorm:"size:2048" json:"image"`
	ImageOriginalName *string `gorm:"size:255" json:"image_original_name,omitempty"`

	// --- 关联关系 ---
	Tags []Tag `gorm:"many2many:product_tags;" json:"tags"`
}

func (Product) TableName() string {
	return "products"
}

// TagNames 按关联顺序返回标签名
func (p *Product) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// HasExternalImage 图片是外部 URL 而不是本地存储的文件
func (p *Product) HasExternalImage() bool {
	return p.Image != nil && IsExternalURL(*p.Image)
}

// IsExternalURL 以 http(s):// 开头的视为外部地址
func IsExternalURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
