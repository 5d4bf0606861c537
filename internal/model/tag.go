package model

import (
	"strings"
	"time"
)

// Tag 商品标签
// Name 保留首次出现时的写法，NameKey 为小写形式并承担唯一约束
type Tag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	NameKey   string    `gorm:"size:255;not null;uniqueIndex:uk_tags_name_key" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// TagKey 标签名的唯一键
func TagKey(name string) string {
	return strings.ToLower(name)
}

// ProductTag 商品-标签中间表
type ProductTag struct {
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
	TagID     int64 `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductTag) TableName() string {
	return "product_tags"
}
