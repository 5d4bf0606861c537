package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName 新建工作簿的默认工作表
const DefaultSheetName = "Sheet1"

// XLSXWriter 基于 StreamWriter 的 xlsx 写入器，表头加粗，其余不加样式
type XLSXWriter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

// NewXLSXWriter 创建写入器并写入加粗表头
func NewXLSXWriter(header []string) (*XLSXWriter, error) {
	f := excelize.NewFile()

	sw, err := f.NewStreamWriter(DefaultSheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建 StreamWriter 失败: %w", err)
	}

	boldID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	w := &XLSXWriter{file: f, stream: sw}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{StyleID: boldID, Value: h}
	}
	if err := w.WriteRow(cells); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// WriteRow 追加一行，值可以是 string / float64 / int64 / time.Time 等 excelize 支持的类型
func (w *XLSXWriter) WriteRow(values []interface{}) error {
	w.row++
	axis, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.stream.SetRow(axis, values); err != nil {
		return fmt.Errorf("写入第 %d 行失败: %w", w.row, err)
	}
	return nil
}

// Rows 已写入的行数 (含表头)
func (w *XLSXWriter) Rows() int { return w.row }

// WriteTo 落盘到 out 并释放资源
func (w *XLSXWriter) WriteTo(out io.Writer) (int64, error) {
	defer func() { _ = w.file.Close() }()

	if err := w.stream.Flush(); err != nil {
		return 0, fmt.Errorf("刷新 StreamWriter 失败: %w", err)
	}
	return w.file.WriteTo(out)
}

// Close 未调用 WriteTo 时释放资源
func (w *XLSXWriter) Close() error {
	return w.file.Close()
}
