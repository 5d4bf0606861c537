// Package sheet 读写 csv / xlsx / xls 表格，屏蔽各格式差异
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Format 表格格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ErrUnsupportedFormat 不支持的扩展名
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// ErrEmptySheet 文件里没有表头行
var ErrEmptySheet = errors.New("spreadsheet has no header row")

// Reader 逐行读取表格
// 第一行作为表头在打开时读取，Next 返回后续数据行，读完返回 io.EOF
type Reader interface {
	Header() []string
	Next() ([]string, error)
	// RowNumber 最近一次 Next 返回的行在文件中的行号 (表头为第 1 行)
	RowNumber() int
	Close() error
}

// FormatFromName 按扩展名识别格式
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Open 按格式打开表格
func Open(format Format, data []byte) (Reader, error) {
	switch format {
	case FormatCSV:
		return NewCSVReader(bytes.NewReader(data))
	case FormatXLSX:
		return NewXLSXReader(bytes.NewReader(data))
	case FormatXLS:
		return NewXLSReader(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// SnakeHeader 表头转 snake_case
// "Image URL" -> "image_url"，"  Created At " -> "created_at"
func SnakeHeader(h string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// IsBlank 整行都是空白单元格
func IsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
