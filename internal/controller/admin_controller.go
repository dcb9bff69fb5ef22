package controller

import (
	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

var adminEndpoints = []string{
	"/admin/dashboard",
	"/admin/users",
	"/admin/products",
	"/admin/orders",
	"/admin/database/test",
	"/admin/config",
}

// AdminController 管理后台控制器
type AdminController struct {
	data     *service.AdminDataService
	database *service.DatabaseService
	config   *service.SystemConfigService
}

// NewAdminController 创建管理后台控制器
func NewAdminController(data *service.AdminDataService, database *service.DatabaseService, config *service.SystemConfigService) *AdminController {
	return &AdminController{data: data, database: database, config: config}
}

// Root 后台接口索引
// @Summary 后台接口索引
// @Tags 管理后台
// @Produce json
// @Success 200 {object} response.Response{data=object} "成功"
// @Router /admin [get]
func (c *AdminController) Root(ctx *gin.Context) {
	response.Success(ctx, gin.H{
		"message":   "Admin API root",
		"endpoints": adminEndpoints,
	})
}

// Dashboard 首页统计
// @Summary 首页统计卡片
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.AdminDashboardStat} "成功"
// @Router /admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	response.Success(ctx, c.data.DashboardStats(ctx.Request.Context()))
}

// Users 用户档案
// @Summary 用户档案
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.AdminUserProfile} "成功"
// @Router /admin/users [get]
func (c *AdminController) Users(ctx *gin.Context) {
	response.Success(ctx, c.data.Users(ctx.Request.Context()))
}

// Payments 充值记录
// @Summary 充值记录
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.RechargeRecord} "成功"
// @Router /admin/payments [get]
func (c *AdminController) Payments(ctx *gin.Context) {
	response.Success(ctx, c.data.RechargeRecords(ctx.Request.Context()))
}

// Orders 后台订单
// @Summary 后台订单列表
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.AdminOrder} "成功"
// @Router /admin/orders [get]
func (c *AdminController) Orders(ctx *gin.Context) {
	response.Success(ctx, c.data.Orders(ctx.Request.Context()))
}

// Order 后台订单详情
// @Summary 后台订单详情
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单号"
// @Success 200 {object} response.Response{data=models.AdminOrder} "成功"
// @Failure 404 {object} response.Response "订单不存在"
// @Router /admin/orders/{id} [get]
func (c *AdminController) Order(ctx *gin.Context) {
	order, err := c.data.Order(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, order)
}

// TestDatabase 检测数据库
// @Summary 检测数据库连接
// @Description 依次检测 root 连接、业务库是否存在、业务账号能否登录
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body installer.DatabaseCheck true "检测参数"
// @Success 200 {object} response.Response{data=installer.DatabaseCheckResult} "成功"
// @Router /admin/database/test [post]
func (c *AdminController) TestDatabase(ctx *gin.Context) {
	var check installer.DatabaseCheck
	if !bindJSON(ctx, &check) {
		return
	}
	response.Success(ctx, c.database.CheckDatabase(ctx.Request.Context(), check))
}

// SeedDatabase 同步预置数据
// @Summary 同步预置数据
// @Description 补齐表结构并写入预置数据，已存在的数据不覆盖
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.SeedResult} "成功"
// @Failure 500 {object} response.Response "初始化失败"
// @Router /admin/database/seed [post]
func (c *AdminController) SeedDatabase(ctx *gin.Context) {
	result, err := c.database.InitializeSeedData(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, result)
}

// GetConfig 系统配置
// @Summary 获取系统配置
// @Tags 管理后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.SystemConfig} "成功"
// @Router /admin/config [get]
func (c *AdminController) GetConfig(ctx *gin.Context) {
	cfg, err := c.config.GetConfig(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, cfg)
}

// SaveConfig 保存系统配置
// @Summary 保存系统配置
// @Description 留空的字段保留原值，保存后同步写回配置文件与安装状态
// @Tags 管理后台
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SystemConfig true "系统配置"
// @Success 200 {object} response.Response{data=service.SystemConfig} "成功"
// @Router /admin/config [put]
func (c *AdminController) SaveConfig(ctx *gin.Context) {
	var cfg service.SystemConfig
	if !bindJSON(ctx, &cfg) {
		return
	}
	saved, err := c.config.SaveConfig(ctx.Request.Context(), &cfg)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, saved)
}
