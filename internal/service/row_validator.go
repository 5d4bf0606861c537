package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// 表格列名 (表头 snake_case 之后)
const (
	ColumnID          = "id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnImageURL    = "image_url"
	ColumnTags        = "tags"
)

// RequiredColumns 导入文件必须包含的列
var RequiredColumns = []string{ColumnName, ColumnPrice}

// MaxPrice decimal(10,2) 能存下的最大值
var MaxPrice = decimal.RequireFromString("99999999.99")

// MaxTagNameLength 与 tags.name 列宽一致
const MaxTagNameLength = 255

// ProductRow 一行导入数据，字段都是原始字符串
type ProductRow struct {
	Name        string `col:"name" validate:"required,text,max=255"`
	Description string `col:"description" validate:"text,max=32767"`
	Price       string `col:"price" validate:"required,decimal,nonnegative,maxprice"`
	ImageURL    string `col:"image_url" validate:"omitempty,text,max=2048,absurl"`
	Tags        string `col:"tags" validate:"text,tagnames"`
}

// ProductCandidate 校验通过的一行
type ProductCandidate struct {
	Row         int
	Name        string
	Description *string
	Price       decimal.Decimal
	Image       *string
	TagNames    []string
}

// RowError 一行里某个字段的校验失败
type RowError struct {
	Row       int               `json:"row"`
	Attribute string            `json:"attribute"`
	Errors    []string          `json:"errors"`
	Values    map[string]string `json:"values"`
}

// (字段, 规则) -> 提示语
var fieldMessages = map[string]string{
	"name.required":        "Product name is required",
	"name.max":             "The name field must not be greater than 255 characters.",
	"price.required":       "Product price is required",
	"price.decimal":        "Price must be a number",
	"price.nonnegative":    "The price field must be at least 0.",
	"price.maxprice":       "The price field must not be greater than 99999999.99.",
	"image_url.absurl":     "Image URL must be a valid URL",
	"image_url.max":        "The image url field must not be greater than 2048 characters.",
	"tags.tagnames":        "Each tag must not be greater than 255 characters.",
	"description.max":      "The description field must not be greater than %s characters.",
	"description.required": "The description field is required.",
	"tags.max":             "The tags field must not be greater than 50 characters.",
	"image.required":       "The image field is required.",
	"image.image_type":     "The image field must be a file of type: jpg, jpeg, png, svg.",
	"image.image_size":     "The image field must not be greater than 2048 kilobytes.",
}

// RowValidator 行校验器
type RowValidator struct {
	validate *validator.Validate
}

// NewRowValidator 创建行校验器，注册自定义规则
func NewRowValidator() *RowValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("col"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("maxprice", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.Round(2).LessThanOrEqual(MaxPrice)
	})

	// 合法 UTF-8 且不含 NUL，PostgreSQL 不接受这两类文本
	_ = v.RegisterValidation("text", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
	})
	// 只接受带 host 的 http(s) 绝对地址
	_ = v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil || u.Host == "" {
			return false
		}
		scheme := strings.ToLower(u.Scheme)
		return scheme == "http" || scheme == "https"
	})
	_ = v.RegisterValidation("tagnames", func(fl validator.FieldLevel) bool {
		for _, name := range ParseTagNames(fl.Field().String()) {
			if utf8.RuneCountInString(name) > MaxTagNameLength {
				return false
			}
		}
		return true
	})

	return &RowValidator{validate: v}
}

// Validate 校验一行
// rowNum 为文件中的行号 (表头是第 1 行)，values 为按列名索引的原始值
// 所有字段都会校验，每个失败字段一条 RowError
func (rv *RowValidator) Validate(rowNum int, values map[string]string) (*ProductCandidate, []RowError) {
	row := ProductRow{
		Name:        strings.TrimSpace(values[ColumnName]),
		Description: strings.TrimSpace(values[ColumnDescription]),
		Price:       strings.TrimSpace(values[ColumnPrice]),
		ImageURL:    strings.TrimSpace(values[ColumnImageURL]),
		Tags:        values[ColumnTags],
	}

	if err := rv.validate.Struct(row); err != nil {
		return nil, rowErrors(rowNum, values, err)
	}

	price, _ := decimal.NewFromString(row.Price)
	c := &ProductCandidate{
		Row:      rowNum,
		Name:     row.Name,
		Price:    price.Round(2),
		TagNames: ParseTagNames(row.Tags),
	}
	if row.Description != "" {
		desc := row.Description
		c.Description = &desc
	}
	if row.ImageURL != "" {
		img := row.ImageURL
		c.Image = &img
	}
	return c, nil
}

func rowErrors(rowNum int, values map[string]string, err error) []RowError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []RowError{{Row: rowNum, Attribute: "row", Errors: []string{err.Error()}, Values: values}}
	}

	// 同一字段的多条消息合并，字段顺序按结构体定义
	index := make(map[string]int)
	var out []RowError
	for _, fe := range verrs {
		attr := fe.Field()
		msg := fieldErrorMessage(attr, fe)
		if i, ok := index[attr]; ok {
			out[i].Errors = append(out[i].Errors, msg)
			continue
		}
		index[attr] = len(out)
		out = append(out, RowError{Row: rowNum, Attribute: attr, Errors: []string{msg}, Values: values})
	}
	return out
}

// fieldMessage 查不到时给一个通用提示
func fieldMessage(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	label := strings.ReplaceAll(field, "_", " ")
	if tag == "text" {
		return "The " + label + " field must be valid UTF-8 text without NUL characters."
	}
	return "The " + label + " field is invalid."
}

// fieldErrorMessage 提示语里的 %s 用规则参数填充 (max=1000 -> 1000)
func fieldErrorMessage(field string, fe validator.FieldError) string {
	msg := fieldMessage(field, fe.Tag())
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// Fields 校验任意带 col/validate 标签的结构体，返回 字段 -> 提示语列表
// 切片元素的错误 (tags[0]) 归到字段本身
func (rv *RowValidator) Fields(v interface{}) map[string][]string {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"form": {err.Error()}}
	}

	out := make(map[string][]string)
	for _, fe := range verrs {
		field, _, _ := strings.Cut(fe.Field(), "[")
		msg := fieldErrorMessage(field, fe)
		if !containsString(out[field], msg) {
			out[field] = append(out[field], msg)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
