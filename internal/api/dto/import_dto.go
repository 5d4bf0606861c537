package dto

import "time"

// ImportRowError 某一行某个字段的校验失败
type ImportRowError struct {
	Row       int               `json:"row"`
	Attribute string            `json:"attribute"`
	Errors    []string          `json:"errors"`
	Values    map[string]string `json:"values"`
}

// ImportResp 导入结果
// 请求级拒绝时不返回 imported
type ImportResp struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Imported *int             `json:"imported,omitempty"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportLogResp 导入记录
type ImportLogResp struct {
	ID             int64          `json:"id"`
	FileName       string         `json:"file_name"`
	Format         string         `json:"format"`
	SizeBytes      int64          `json:"size_bytes"`
	TotalRows      int            `json:"total_rows"`
	ImportedCount  int            `json:"imported_count"`
	FailedRows     int            `json:"failed_rows"`
	Batches        int            `json:"batches"`
	FailureSummary map[string]int `json:"failure_summary"`
	Status         string         `json:"status"`
	ErrorMsg       string         `json:"error_msg,omitempty"`
	DurationMs     int64          `json:"duration_ms"`
	UserID         int64          `json:"user_id"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ImportLogListResp 导入记录列表
type ImportLogListResp struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    []ImportLogResp `json:"data"`
}
