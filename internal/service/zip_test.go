package service

import (
	"archive/zip"
	"io"
	"testing"
)

// newZipWithEntry 写入一个文件后返回 writer，调用方负责 Close
func newZipWithEntry(t *testing.T, out io.Writer, name, content string) *zip.Writer {
	t.Helper()
	zw := zip.NewWriter(out)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("创建 zip 条目失败: %v", err)
	}
	if _, err := io.WriteString(w, content); err != nil {
		t.Fatalf("写入 zip 条目失败: %v", err)
	}
	return zw
}
