package sheet

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func readAll(t *testing.T, r Reader) ([][]string, []int) {
	t.Helper()
	var rows [][]string
	var nums []int
	for {
		cells, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		rows = append(rows, cells)
		nums = append(nums, r.RowNumber())
	}
	return rows, nums
}

func TestSnakeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"Image URL", "image_url"},
		{"  Created At ", "created_at"},
		{"image-url", "image_url"},
		{"ID", "id"},
		{"price ($)", "price"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SnakeHeader(tt.in); got != tt.want {
				t.Errorf("SnakeHeader(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"products.xlsx", FormatXLSX, false},
		{"PRODUCTS.XLS", FormatXLS, false},
		{"a.b.csv", FormatCSV, false},
		{"products.pdf", "", true},
		{"products", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromName() = %s, want %s", got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("期望 ErrUnsupportedFormat，实际: %v", err)
			}
		})
	}
}

func TestCSVReader(t *testing.T) {
	data := "\xEF\xBB\xBFname,price,tags\nWidget,9.99,\"red, blue\"\n\nGadget,5\n"

	r, err := NewCSVReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewCSVReader() error = %v", err)
	}
	defer r.Close()

	header := r.Header()
	if len(header) != 3 || header[0] != "name" {
		t.Fatalf("Header() = %q，BOM 未去除或表头错误", header)
	}

	rows, nums := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("期望 2 行数据，实际 %d", len(rows))
	}
	if rows[0][2] != "red, blue" {
		t.Errorf("引号字段解析错误: %q", rows[0][2])
	}
	if len(rows[1]) != 2 {
		t.Errorf("字段数不一致的行应当保留: %q", rows[1])
	}
	// 空行被跳过，但行号保持文件中的真实位置
	if nums[0] != 2 || nums[1] != 4 {
		t.Errorf("RowNumber = %v, want [2 4]", nums)
	}
}

func TestCSVReader_MultilineCell(t *testing.T) {
	data := "name,description,price\nA,\"line1\nline2\nline3\",1\nB,,bad\n\nC,\"x\r\ny\",2\nD,,3\n"

	r, err := NewCSVReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewCSVReader() error = %v", err)
	}
	defer r.Close()

	rows, nums := readAll(t, r)
	if len(rows) != 4 {
		t.Fatalf("期望 4 行数据，实际 %d", len(rows))
	}
	if rows[0][1] != "line1\nline2\nline3" {
		t.Errorf("多行单元格解析错误: %q", rows[0][1])
	}
	// 多行单元格只算一行，空行仍然占一行
	want := []int{2, 3, 5, 6}
	for i := range want {
		if nums[i] != want[i] {
			t.Fatalf("RowNumber = %v, want %v", nums, want)
		}
	}
}

func TestCSVReader_Empty(t *testing.T) {
	if _, err := NewCSVReader(strings.NewReader("")); !errors.Is(err, ErrEmptySheet) {
		t.Errorf("期望 ErrEmptySheet，实际: %v", err)
	}
}

func TestXLSXReader(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Price"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Widget", 9.5})
	// 第 3 行留空
	_ = f.SetSheetRow("Sheet1", "A4", &[]interface{}{"Gadget", 0})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("生成 xlsx 失败: %v", err)
	}

	r, err := Open(FormatXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if h := r.Header(); len(h) != 2 || h[1] != "Price" {
		t.Fatalf("Header() = %q", h)
	}

	rows, nums := readAll(t, r)
	var dataRows [][]string
	var dataNums []int
	for i, row := range rows {
		if IsBlank(row) {
			continue
		}
		dataRows = append(dataRows, row)
		dataNums = append(dataNums, nums[i])
	}
	if len(dataRows) != 2 {
		t.Fatalf("期望 2 行数据，实际 %d", len(dataRows))
	}
	if dataRows[0][1] != "9.5" {
		t.Errorf("价格单元格 = %q, want 9.5", dataRows[0][1])
	}
	if dataNums[1] != 4 {
		t.Errorf("第二条数据行号 = %d, want 4", dataNums[1])
	}
}

func TestXLSXReader_Corrupt(t *testing.T) {
	if _, err := Open(FormatXLSX, []byte("not a zip")); err == nil {
		t.Error("期望返回错误，但未返回")
	}
}

func TestXLSReader_Corrupt(t *testing.T) {
	if _, err := Open(FormatXLS, []byte("definitely not OLE2")); err == nil {
		t.Error("期望返回错误，但未返回")
	}
}

func TestXLSXWriter(t *testing.T) {
	w, err := NewXLSXWriter([]string{"ID", "Name"})
	if err != nil {
		t.Fatalf("NewXLSXWriter() error = %v", err)
	}
	if err := w.WriteRow([]interface{}{int64(1), "Widget"}); err != nil {
		t.Fatalf("WriteRow() error = %v", err)
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	defer f.Close()

	v, _ := f.GetCellValue(DefaultSheetName, "B2")
	if v != "Widget" {
		t.Errorf("B2 = %q, want Widget", v)
	}

	styleID, err := f.GetCellStyle(DefaultSheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellStyle() error = %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() error = %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("表头应为粗体")
	}

	dataStyle, _ := f.GetCellStyle(DefaultSheetName, "A2")
	if dataStyle == styleID {
		t.Error("数据行不应使用表头样式")
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank([]string{"", "  ", "\t"}) {
		t.Error("空白行应返回 true")
	}
	if !IsBlank(nil) {
		t.Error("nil 应返回 true")
	}
	if IsBlank([]string{"", "x"}) {
		t.Error("非空行应返回 false")
	}
}
