package controller

import (
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

// CatalogController 商品与课程控制器，读接口公开，写接口挂在 /admin 下
type CatalogController struct {
	products *service.ProductService
	courses  *service.CourseService
}

// NewCatalogController 创建商品与课程控制器
func NewCatalogController(products *service.ProductService, courses *service.CourseService) *CatalogController {
	return &CatalogController{products: products, courses: courses}
}

// ListProducts 商品列表
// @Summary 商品列表
// @Tags 商品
// @Produce json
// @Param q query string false "名称关键字"
// @Success 200 {object} response.Response{data=[]models.Product} "成功"
// @Router /products [get]
func (c *CatalogController) ListProducts(ctx *gin.Context) {
	products, err := c.products.List(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, products)
}

// GetProduct 商品详情
// @Summary 商品详情
// @Tags 商品
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} response.Response{data=models.Product} "成功"
// @Failure 404 {object} response.Response "商品不存在"
// @Router /products/{id} [get]
func (c *CatalogController) GetProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	product, err := c.products.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, product)
}

// CreateProduct 创建商品
// @Summary 创建商品
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProductInput true "商品参数"
// @Success 200 {object} response.Response{data=models.Product} "成功"
// @Router /admin/products [post]
func (c *CatalogController) CreateProduct(ctx *gin.Context) {
	var in service.ProductInput
	if !bindJSON(ctx, &in) {
		return
	}
	product, err := c.products.Create(ctx.Request.Context(), &in)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, product)
}

// UpdateProduct 更新商品
// @Summary 更新商品
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body service.ProductInput true "商品参数"
// @Success 200 {object} response.Response{data=models.Product} "成功"
// @Router /admin/products/{id} [put]
func (c *CatalogController) UpdateProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var in service.ProductInput
	if !bindJSON(ctx, &in) {
		return
	}
	product, err := c.products.Update(ctx.Request.Context(), id, &in)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, product)
}

// DeleteProduct 删除商品
// @Summary 删除商品
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} response.Response "成功"
// @Router /admin/products/{id} [delete]
func (c *CatalogController) DeleteProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.products.Delete(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, gin.H{"status": "deleted"})
}

// ListCourses 课程列表
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Course} "成功"
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	courses, err := c.courses.List(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, courses)
}

// GetCourse 课程详情
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} response.Response{data=models.Course} "成功"
// @Failure 404 {object} response.Response "课程不存在"
// @Router /courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.courses.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, course)
}

// CreateCourse 创建课程
// @Summary 创建课程
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CourseInput true "课程参数"
// @Success 200 {object} response.Response{data=models.Course} "成功"
// @Router /admin/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if !bindJSON(ctx, &in) {
		return
	}
	course, err := c.courses.Create(ctx.Request.Context(), &in)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, course)
}

// UpdateCourse 更新课程，句子整体替换
// @Summary 更新课程
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param request body service.CourseInput true "课程参数"
// @Success 200 {object} response.Response{data=models.Course} "成功"
// @Router /admin/courses/{id} [put]
func (c *CatalogController) UpdateCourse(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var in service.CourseInput
	if !bindJSON(ctx, &in) {
		return
	}
	course, err := c.courses.Update(ctx.Request.Context(), id, &in)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, course)
}

// DeleteCourse 删除课程
// @Summary 删除课程
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} response.Response "成功"
// @Router /admin/courses/{id} [delete]
func (c *CatalogController) DeleteCourse(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.courses.Delete(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, gin.H{"status": "deleted"})
}
