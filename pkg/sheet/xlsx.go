package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
	row    int
}

// NewXLSXReader 流式读取第一个工作表
func NewXLSXReader(src io.Reader) (Reader, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("打开 xlsx 失败: %w", err)
	}

	// 合法的 xlsx 至少有一个工作表，没有说明 zip 内容不是工作簿
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errors.New("xlsx 中没有工作表")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}

	x := &xlsxReader{file: f, rows: rows}
	header, err := x.Next()
	if err != nil {
		_ = x.Close()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySheet
		}
		return nil, err
	}
	x.header = header
	return x, nil
}

func (x *xlsxReader) Header() []string { return x.header }

// Next 缺失的行 (中间空行) 也会计数，返回空切片
func (x *xlsxReader) Next() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, fmt.Errorf("读取 xlsx 行失败: %w", err)
		}
		return nil, io.EOF
	}
	x.row++
	cols, err := x.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取 xlsx 第 %d 行失败: %w", x.row, err)
	}
	return cols, nil
}

func (x *xlsxReader) RowNumber() int { return x.row }

func (x *xlsxReader) Close() error {
	if x.rows != nil {
		_ = x.rows.Close()
	}
	return x.file.Close()
}
