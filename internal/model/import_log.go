package model

import "gorm.io/datatypes"

// ImportLog 批量导入记录
// 只保存汇总信息，不保存行数据
type ImportLog struct {
	BaseModel

	// 文件信息
	FileName  string `gorm:"size:255;comment:原始文件名" json:"file_name"`
	Format    string `gorm:"size:16;comment:文件格式(csv/xlsx/xls)" json:"format"`
	SizeBytes int64  `gorm:"default:0;comment:文件大小" json:"size_bytes"`

	// 结果统计
	TotalRows     int `gorm:"default:0;comment:数据行数" json:"total_rows"`
	ImportedCount int `gorm:"default:0;comment:成功导入数" json:"imported_count"`
	FailedRows    int `gorm:"default:0;comment:失败行数" json:"failed_rows"`
	Batches       int `gorm:"default:0;comment:提交批次数" json:"batches"`

	// 各字段失败次数 {"price":2,"name":1}
	FailureSummary datatypes.JSON `gorm:"comment:失败字段统计" json:"failure_summary"`

	// 状态
	Status     string `gorm:"size:32;index;comment:状态(success/partial/failed)" json:"status"`
	ErrorMsg   string `gorm:"size:1024;comment:错误信息" json:"error_msg,omitempty"`
	DurationMs int64  `gorm:"comment:耗时(毫秒)" json:"duration_ms"`

	// 操作人
	UserID int64 `gorm:"index;default:0;comment:操作人ID" json:"user_id"`
}

func (ImportLog) TableName() string {
	return "import_logs"
}

// ==================== 状态常量 ====================

const (
	ImportStatusSuccess = "success"
	ImportStatusPartial = "partial"
	ImportStatusFailed  = "failed"
)
