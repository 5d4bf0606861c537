package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/api/dto"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipart 边界和其它字段预留的字节数
const multipartOverhead = 64 * 1024

// TransferController 批量导入 / 导出
type TransferController struct {
	importService *service.ImportService
	exportService *service.ExportService
	logger        *zap.Logger
}

func NewTransferController(importService *service.ImportService, exportService *service.ExportService, log *zap.Logger) *TransferController {
	return &TransferController{
		importService: importService,
		exportService: exportService,
		logger:        logger.OrNop(log),
	}
}

// ==================== 导入 ====================

// ImportProducts 批量导入商品
// @Summary 从 xlsx / xls / csv 批量导入商品
// @Description 必须包含 name、price 列；可选 description、image_url、tags (逗号分隔)。校验失败的行不影响其它行。
// @Tags Transfer
// @Accept multipart/form-data
// @Param file formData file true "xlsx / xls / csv，不超过 5120KB"
// @Success 200 {object} dto.ImportResp
// @Failure 422 {object} dto.ImportResp
// @Failure 500 {object} dto.ImportResp
// @Router /api/products/import [post]
func (ctrl *TransferController) ImportProducts(c *gin.Context) {
	maxSize := ctrl.importService.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctrl.reject(c, tooLargeMessage(maxSize))
			return
		}
		ctrl.reject(c, "The file field is required.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		ctrl.logger.Error("[Import] 打开上传文件失败", zap.String("file", fh.Filename), zap.Error(err))
		ctrl.serverError(c)
		return
	}
	defer f.Close()

	result, err := ctrl.importService.Import(c.Request.Context(), service.ImportFile{
		Name:   fh.Filename,
		Size:   fh.Size,
		Reader: f,
		UserID: middleware.GetUserID(c),
	})
	if err != nil {
		var fe *service.FileError
		if errors.As(err, &fe) {
			switch fe.Reason {
			case service.FileErrorTooLarge:
				ctrl.reject(c, tooLargeMessage(maxSize))
				return
			case service.FileErrorUnsupported:
				ctrl.reject(c, "The file must be a file of type: xlsx, xls, csv.")
				return
			case service.FileErrorMissingColumns:
				ctrl.reject(c, "Invalid file header: "+fe.Err.Error())
				return
			}
		}
		ctrl.logger.Error("[Import] 导入失败",
			zap.String("file", fh.Filename),
			zap.Int("imported", result.ImportedCount),
			zap.Error(err))
		ctrl.serverError(c)
		return
	}

	imported := result.ImportedCount
	if result.HasErrors() {
		c.JSON(http.StatusUnprocessableEntity, dto.ImportResp{
			Success:  false,
			Message:  "Import failed due to validation errors",
			Imported: &imported,
			Errors:   toRowErrors(result.Errors),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ImportResp{
		Success:  true,
		Message:  "Products imported successfully.",
		Imported: &imported,
	})
}

// reject 请求级拒绝，不返回 imported
func (ctrl *TransferController) reject(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, dto.ImportResp{Success: false, Message: message})
}

func (ctrl *TransferController) serverError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.ImportResp{
		Success: false,
		Message: "Import failed. Please check the file and try again.",
	})
}

func tooLargeMessage(maxSize int64) string {
	return fmt.Sprintf("The file field must not be greater than %d kilobytes.", maxSize/1024)
}

func toRowErrors(errs []service.RowError) []dto.ImportRowError {
	out := make([]dto.ImportRowError, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.ImportRowError{
			Row:       e.Row,
			Attribute: e.Attribute,
			Errors:    e.Errors,
			Values:    e.Values,
		})
	}
	return out
}

// ==================== 导出 ====================

// ExportProducts 导出商品
// @Summary 按列表同样的筛选条件导出 xlsx
// @Tags Transfer
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "名称或描述关键字"
// @Param min_price query number false "最低价格"
// @Param max_price query number false "最高价格"
// @Param sort query string false "排序字段"
// @Param direction query string false "asc|desc" default(asc)
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResp
// @Router /api/products/export [get]
func (ctrl *TransferController) ExportProducts(c *gin.Context) {
	var q dto.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	filter, err := parseFilter(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	// 先写入内存，失败时还能返回 JSON
	var buf bytes.Buffer
	n, err := ctrl.exportService.Export(c.Request.Context(), filter, &buf)
	if err != nil {
		ctrl.logger.Error("[Export] 导出失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "导出失败"})
		return
	}

	name := service.ExportFileName(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("X-Export-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ==================== 导入记录 ====================

// GetImportLogs 最近的导入记录
// @Summary 最近的导入记录
// @Tags Transfer
// @Param limit query int false "条数 (≤100)" default(20)
// @Success 200 {object} dto.ImportLogListResp
// @Router /api/import-logs [get]
func (ctrl *TransferController) GetImportLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := ctrl.importService.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		ctrl.logger.Error("[Import] 查询导入记录失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}

	data := make([]dto.ImportLogResp, 0, len(logs))
	for i := range logs {
		data = append(data, toImportLogResp(&logs[i]))
	}
	c.JSON(http.StatusOK, dto.ImportLogListResp{Code: 0, Message: "success", Data: data})
}

// GetImportStats 导入统计
// @Summary 最近 N 天的导入统计
// @Tags Transfer
// @Param days query int false "天数" default(7)
// @Success 200 {object} repository.ImportStats
// @Router /api/import-logs/stats [get]
func (ctrl *TransferController) GetImportStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	stats, err := ctrl.importService.Stats(c.Request.Context(), days)
	if err != nil {
		ctrl.logger.Error("[Import] 查询导入统计失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": stats})
}

func toImportLogResp(l *model.ImportLog) dto.ImportLogResp {
	summary := map[string]int{}
	if len(l.FailureSummary) > 0 {
		_ = json.Unmarshal(l.FailureSummary, &summary)
	}
	return dto.ImportLogResp{
		ID:             l.ID,
		FileName:       l.FileName,
		Format:         l.Format,
		SizeBytes:      l.SizeBytes,
		TotalRows:      l.TotalRows,
		ImportedCount:  l.ImportedCount,
		FailedRows:     l.FailedRows,
		Batches:        l.Batches,
		FailureSummary: summary,
		Status:         l.Status,
		ErrorMsg:       l.ErrorMsg,
		DurationMs:     l.DurationMs,
		UserID:         l.UserID,
		CreatedAt:      l.CreatedAt,
	}
}
