package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/api/dto"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/pkg/logger"
)

type TagController struct {
	tagService *service.TagService
	logger     *zap.Logger
}

func NewTagController(tagService *service.TagService, log *zap.Logger) *TagController {
	return &TagController{tagService: tagService, logger: logger.OrNop(log)}
}

// GetTags 标签词表
// @Summary 全部标签名 (按名称排序)
// @Tags Tag
// @Success 200 {object} dto.TagListResp
// @Router /api/tags [get]
func (ctrl *TagController) GetTags(c *gin.Context) {
	names, err := ctrl.tagService.ListNames(c.Request.Context())
	if err != nil {
		ctrl.logger.Error("[Tag] 查询标签失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, dto.TagListResp{Code: 0, Message: "success", Data: names})
}
