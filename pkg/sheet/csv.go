package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvReader struct {
	r      *csv.Reader
	header []string
	row    int // 当前记录的行号，表头为 1
	end    int // 上一条记录结束的物理行
}

// NewCSVReader 读取 CSV，去掉 UTF-8 BOM，允许每行字段数不一致
func NewCSVReader(src io.Reader) (Reader, error) {
	br := bufio.NewReader(src)
	if peek, err := br.Peek(len(utf8BOM)); err == nil && string(peek) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySheet
		}
		return nil, fmt.Errorf("读取 CSV 表头失败: %w", err)
	}
	return &csvReader{r: r, header: header, row: 1, end: recordEndLine(r, header)}, nil
}

func (c *csvReader) Header() []string { return c.header }

func (c *csvReader) Next() ([]string, error) {
	rec, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("读取 CSV 行失败: %w", err)
	}
	// encoding/csv 会跳过空行，空行仍计入行号；跨多行的带引号单元格只算一行
	start, _ := c.r.FieldPos(0)
	blank := start - c.end - 1
	if blank < 0 {
		blank = 0
	}
	c.row += 1 + blank
	c.end = recordEndLine(c.r, rec)
	return rec, nil
}

func (c *csvReader) RowNumber() int { return c.row }

// recordEndLine 刚读出的记录在源文件中结束的物理行
func recordEndLine(r *csv.Reader, rec []string) int {
	if len(rec) == 0 {
		return 0
	}
	last := len(rec) - 1
	line, _ := r.FieldPos(last)
	return line + strings.Count(rec[last], "\n")
}

func (c *csvReader) Close() error { return nil }
