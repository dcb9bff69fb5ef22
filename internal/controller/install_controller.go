package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 3 * time.Second

// InstallStatus 安装状态
type InstallStatus struct {
	Connected bool   `json:"connected"`
	Installed bool   `json:"installed"`
	Message   string `json:"message"`
}

// ConnectionTestRequest root 连接测试参数
type ConnectionTestRequest struct {
	Host         string `json:"host" binding:"required"`
	Port         int    `json:"port"`
	RootPassword string `json:"root_password" binding:"required"`
}

// InstallController 安装向导控制器
type InstallController struct {
	installer *installer.Installer
	state     *store.InstallStateStore
	db        *gorm.DB
	log       *zap.Logger
}

// NewInstallController 创建安装向导控制器，db 为 nil 表示尚未连接数据库
func NewInstallController(inst *installer.Installer, state *store.InstallStateStore, db *gorm.DB, log *zap.Logger) *InstallController {
	if log == nil {
		log = zap.NewNop()
	}
	return &InstallController{installer: inst, state: state, db: db, log: log}
}

// Status 安装状态
// @Summary 安装状态
// @Description 返回数据库连接状态和安装完成标记
// @Tags 安装
// @Produce json
// @Success 200 {object} response.Response{data=InstallStatus} "成功"
// @Router /install/status [get]
func (c *InstallController) Status(ctx *gin.Context) {
	status := InstallStatus{
		Connected: c.ping(ctx.Request.Context()),
		Installed: c.state.Installed(),
	}
	if status.Connected {
		status.Message = "数据库已连接"
	} else {
		status.Message = "尚未连接到数据库，需执行安装向导。"
	}
	response.Success(ctx, status)
}

func (c *InstallController) ping(ctx context.Context) bool {
	if c.db == nil {
		return false
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}

// TestDatabase 测试 root 连接
// @Summary 测试 MySQL root 连接
// @Tags 安装
// @Accept json
// @Produce json
// @Param request body ConnectionTestRequest true "连接参数"
// @Success 200 {object} response.Response{data=installer.ConnectionResult} "成功"
// @Failure 400 {object} response.Response "参数错误"
// @Router /install/database/test [post]
func (c *InstallController) TestDatabase(ctx *gin.Context) {
	var req ConnectionTestRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if req.Port == 0 {
		req.Port = 3306
	}
	response.Success(ctx, c.installer.TestConnection(ctx.Request.Context(), req.Host, req.Port, req.RootPassword))
}

// Run 执行安装
// @Summary 执行安装向导
// @Description 建库授权、建表、写入预置数据并保存配置，可重复执行
// @Tags 安装
// @Accept json
// @Produce json
// @Param request body installer.Request true "安装参数"
// @Success 200 {object} response.Response{data=installer.Result} "成功"
// @Failure 400 {object} response.Response "步骤失败，data 为失败详情"
// @Failure 500 {object} response.Response "服务器错误"
// @Router /install/run [post]
func (c *InstallController) Run(ctx *gin.Context) {
	var req installer.Request
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.installer.Run(ctx.Request.Context(), req)
	if err != nil {
		var stepErr *installer.StepError
		switch {
		case errors.As(err, &stepErr):
			response.FailWithData(ctx, http.StatusBadRequest, stepErr.Message, stepErr.Detail())
		case errors.Is(err, installer.ErrInvalidRequest):
			response.Fail(ctx, http.StatusBadRequest, err.Error())
		default:
			c.log.Error("安装失败", zap.Error(err))
			response.Fail(ctx, http.StatusInternalServerError, "安装失败："+err.Error())
		}
		return
	}
	response.Success(ctx, result)
}
