package sheet

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

type xlsReader struct {
	sheet  *xls.WorkSheet
	header []string
	next   int // 下一个要读取的行下标 (0 起)
	last   int
}

// NewXLSReader 读取老版 Excel 97-2003 文件的第一个工作表
// extrame/xls 遇到损坏文件可能 panic，这里统一转成 error
func NewXLSReader(src io.ReadSeeker) (r Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("解析 xls 失败: %v", rec)
		}
	}()

	wb, err := xls.OpenReader(src, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("打开 xls 失败: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmptySheet
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrEmptySheet
	}

	x := &xlsReader{sheet: ws, last: int(ws.MaxRow)}
	header, err := x.Next()
	if err != nil {
		return nil, ErrEmptySheet
	}
	x.header = header
	return x, nil
}

func (x *xlsReader) Header() []string { return x.header }

func (x *xlsReader) Next() (cells []string, err error) {
	if x.next > x.last {
		return nil, io.EOF
	}
	defer func() {
		if rec := recover(); rec != nil {
			cells, err = nil, fmt.Errorf("解析 xls 第 %d 行失败: %v", x.next, rec)
		}
	}()

	idx := x.next
	x.next++

	row := x.sheet.Row(idx)
	if row == nil {
		return []string{}, nil
	}
	cells = make([]string, 0, row.LastCol()+1)
	for c := 0; c <= row.LastCol(); c++ {
		cells = append(cells, row.Col(c))
	}
	return cells, nil
}

func (x *xlsReader) RowNumber() int { return x.next }

func (x *xlsReader) Close() error { return nil }
