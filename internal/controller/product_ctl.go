package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"catalog_admin_v1_202610/internal/api/dto"
	"catalog_admin_v1_202610/internal/model"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/service"
	"catalog_admin_v1_202610/pkg/logger"
)

type ProductController struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductController(productService *service.ProductService, log *zap.Logger) *ProductController {
	return &ProductController{productService: productService, logger: logger.OrNop(log)}
}

// ==================== 查询接口 ====================

// GetProducts 商品列表
// @Summary 商品列表 (搜索 / 价格区间 / 排序 / 分页)
// @Tags Product
// @Param search query string false "名称或描述关键字"
// @Param min_price query number false "最低价格"
// @Param max_price query number false "最高价格"
// @Param sort query string false "排序字段 id|name|price|created_at|updated_at"
// @Param direction query string false "asc|desc" default(desc)
// @Param page query int false "页码" default(1)
// @Param per_page query int false "每页数量 2|5|10|25|50|100" default(2)
// @Success 200 {object} dto.ProductListResp
// @Failure 400 {object} dto.ErrorResp
// @Router /api/products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
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

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := service.NormalizePerPage(q.PerPage)

	products, total, err := ctrl.productService.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		ctrl.logger.Error("[Product] 查询列表失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}

	data := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		data = append(data, ctrl.toResp(&products[i]))
	}

	c.JSON(http.StatusOK, dto.ProductListResp{
		Code:    0,
		Message: "success",
		Data:    data,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// GetProduct 商品详情
// @Summary 获取单个商品
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductDetailResp
// @Failure 404 {object} dto.ErrorResp
// @Router /api/products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := ctrl.productService.Get(c.Request.Context(), id)
	if err != nil {
		ctrl.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductDetailResp{Code: 0, Message: "success", Data: ctrl.toResp(p)})
}

// ==================== 写接口 ====================

// CreateProduct 新建商品
// @Summary 新建商品 (multipart)
// @Tags Product
// @Accept multipart/form-data
// @Param name formData string true "名称"
// @Param description formData string true "描述"
// @Param price formData number true "价格"
// @Param tags formData []string false "标签，可重复或逗号分隔"
// @Param image formData file true "图片 jpg/png/svg ≤2048KB"
// @Success 201 {object} dto.ProductDetailResp
// @Failure 422 {object} dto.ErrorResp
// @Router /api/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	form, err := bindProductForm(c)
	if err != nil {
		ctrl.bindFail(c, err)
		return
	}

	p, err := ctrl.productService.Create(c.Request.Context(), form)
	if err != nil {
		ctrl.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProductDetailResp{Code: 0, Message: "Product created successfully.", Data: ctrl.toResp(p)})
}

// UpdateProduct 编辑商品
// @Summary 编辑商品 (multipart)，未提交 tags 时保留原标签，未上传图片时保留原图
// @Tags Product
// @Accept multipart/form-data
// @Param id path int true "商品ID"
// @Param name formData string true "名称"
// @Param description formData string true "描述"
// @Param price formData number true "价格"
// @Param tags formData []string false "标签"
// @Param image formData file false "图片"
// @Success 200 {object} dto.ProductDetailResp
// @Failure 404 {object} dto.ErrorResp
// @Failure 422 {object} dto.ErrorResp
// @Router /api/products/{id} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	form, err := bindProductForm(c)
	if err != nil {
		ctrl.bindFail(c, err)
		return
	}

	p, err := ctrl.productService.Update(c.Request.Context(), id, form)
	if err != nil {
		ctrl.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductDetailResp{Code: 0, Message: "Product updated successfully.", Data: ctrl.toResp(p)})
}

// DeleteProduct 删除商品
// @Summary 删除商品 (软删除)
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ErrorResp
// @Failure 404 {object} dto.ErrorResp
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		ctrl.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "Product deleted successfully."})
}

// ==================== 辅助函数 ====================

// bindFail 表单读取失败：图片过大按校验错误返回，其它为 400
func (ctrl *ProductController) bindFail(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		ctrl.fail(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
}

func (ctrl *ProductController) fail(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResp{Code: 422, Message: "The given data was invalid.", Errors: verr.Fields})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
	default:
		ctrl.logger.Error("[Product] 请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "服务器内部错误"})
	}
}

func (ctrl *ProductController) toResp(p *model.Product) dto.ProductResp {
	desc := ""
	if p.Description != nil {
		desc = *p.Description
	}
	return dto.ProductResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: desc,
		Price:       p.Price.StringFixed(2),
		ImageURL:    ctrl.productService.ImageURL(p),
		Tags:        p.TagNames(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的商品 ID"})
		return 0, false
	}
	return id, true
}

// parseFilter 查询参数转换为仓储过滤条件
func parseFilter(q dto.ProductQuery) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Search:    strings.TrimSpace(q.Search),
		Sort:      strings.TrimSpace(q.Sort),
		Direction: strings.ToLower(strings.TrimSpace(q.Direction)),
	}

	var err error
	if filter.MinPrice, err = parsePrice("min_price", q.MinPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice("max_price", q.MaxPrice); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s 必须是数字", field)
	}
	return &d, nil
}

// bindProductForm 读取 multipart / urlencoded 表单
// 请求体超过图片上限时不再继续读取
func bindProductForm(c *gin.Context) (service.ProductForm, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+multipartOverhead)
	if err := c.Request.ParseMultipartForm(service.MaxImageSize + multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.ProductForm{}, &service.ValidationError{Fields: map[string][]string{
				"image": {service.ImageTooLargeMessage},
			}}
		}
		return service.ProductForm{}, err
	}

	form := service.ProductForm{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
	}
	form.Tags, form.TagsPresent = formTags(c)

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		data, err := readFormFile(fh)
		if err != nil {
			return form, err
		}
		form.Image = &service.ImageUpload{Filename: fh.Filename, Data: data}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return form, err
	}
	return form, nil
}

// formTags 支持 tags=a&tags=b、tags[]=a 以及单个逗号分隔字符串
func formTags(c *gin.Context) ([]string, bool) {
	values, ok := c.GetPostFormArray("tags")
	if !ok {
		values, ok = c.GetPostFormArray("tags[]")
	}
	if !ok {
		return nil, false
	}
	if len(values) == 1 {
		return service.ParseTagNames(values[0]), true
	}
	return service.NormalizeTagNames(values), true
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
