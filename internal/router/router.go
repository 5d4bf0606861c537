package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/controller"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/pkg/logger"

	_ "catalog_admin_v1_202610/docs"
)

// Options 路由可选项
type Options struct {
	// StorageDir 本地存储目录，非空时挂载到 /storage
	StorageDir string
	// BulkLimiter 导入 / 导出限流，nil 不限流
	BulkLimiter *middleware.BulkRateLimiter
	// HealthCheck /healthz 调用，nil 时直接返回 ok
	HealthCheck func(ctx context.Context) error
	// Logger 记录健康检查失败原因，可以为 nil
	Logger *zap.Logger
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, opts Options,
	productCtl *controller.ProductController,
	transferCtl *controller.TransferController,
	tagCtl *controller.TagController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 健康检查
	log := logger.OrNop(opts.Logger)
	r.GET("/healthz", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(c.Request.Context()); err != nil {
				// 原因只进日志，不返回给调用方
				log.Error("[Health] 健康检查失败", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 3. 本地存储的图片
	if opts.StorageDir != "" {
		r.Static("/storage", opts.StorageDir)
	}

	bulk := func(action string) gin.HandlerFunc {
		if opts.BulkLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.BulkRateLimit(opts.BulkLimiter, action)
	}

	// 4. API 路由组
	api := r.Group("/api", middleware.JWTAuth())
	{
		products := api.Group("/products")
		{
			// 批量导入导出，注册在 /:id 之前
			products.POST("/import", bulk("import"), transferCtl.ImportProducts)
			products.GET("/export", bulk("export"), transferCtl.ExportProducts)

			products.GET("", productCtl.GetProducts)
			products.POST("", productCtl.CreateProduct)
			products.GET("/:id", productCtl.GetProduct)
			products.PUT("/:id", productCtl.UpdateProduct)
			products.DELETE("/:id", productCtl.DeleteProduct)
		}

		api.GET("/tags", tagCtl.GetTags)

		logs := api.Group("/import-logs")
		{
			logs.GET("", transferCtl.GetImportLogs)
			logs.GET("/stats", transferCtl.GetImportStats)
		}
	}
}
