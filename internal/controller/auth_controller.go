package controller

import (
	"github.com/enteacher-core/internal/middleware"
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

// LoginRequest 账号密码登录参数
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SendCodeRequest 发送验证码参数
type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// CodeLoginRequest 验证码登录参数
type CodeLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// AuthController 认证控制器
type AuthController struct {
	auth *service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Login 账号密码登录
// @Summary 账号密码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录参数"
// @Success 200 {object} response.Response{data=service.TokenResponse} "成功"
// @Failure 401 {object} response.Response "账号或密码错误"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	token, err := c.auth.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, token)
}

// SendCode 发送验证码
// @Summary 发送短信验证码
// @Description 未接入短信网关，验证码直接在响应中返回
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body SendCodeRequest true "手机号"
// @Success 200 {object} response.Response{data=object} "成功"
// @Router /auth/send-code [post]
func (c *AuthController) SendCode(ctx *gin.Context) {
	var req SendCodeRequest
	if !bindJSON(ctx, &req) {
		return
	}
	code, err := c.auth.SendCode(ctx.Request.Context(), req.Phone)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, gin.H{"message": "验证码已发送", "code": code})
}

// CodeLogin 验证码登录
// @Summary 验证码登录
// @Description 手机号未注册时自动创建用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body CodeLoginRequest true "登录参数"
// @Success 200 {object} response.Response{data=service.TokenResponse} "成功"
// @Failure 400 {object} response.Response "验证码错误"
// @Router /auth/code-login [post]
func (c *AuthController) CodeLogin(ctx *gin.Context) {
	var req CodeLoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	token, err := c.auth.CodeLogin(ctx.Request.Context(), req.Phone, req.Code)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, token)
}

// AdminLogin 管理员登录
// @Summary 管理员登录
// @Description 数据库不可用时可使用安装时设置的默认管理员
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录参数"
// @Success 200 {object} response.Response{data=service.TokenResponse} "成功"
// @Failure 403 {object} response.Response "非管理员"
// @Failure 503 {object} response.Response "数据库不可用"
// @Router /auth/admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	token, err := c.auth.AdminLogin(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, token)
}

// Register 注册
// @Summary 注册用户
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "注册参数"
// @Success 200 {object} response.Response{data=models.User} "成功"
// @Failure 400 {object} response.Response "用户名或手机号已存在"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.auth.Register(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, user)
}

// Me 当前用户
// @Summary 当前登录用户
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User} "成功"
// @Failure 401 {object} response.Response "未登录"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	principal := middleware.CurrentPrincipal(ctx)
	if principal.IsBootstrap() {
		response.Success(ctx, gin.H{
			"id":               0,
			"username":         principal.Username,
			"role":             principal.Role,
			"is_default_admin": true,
		})
		return
	}
	response.Success(ctx, principal.User)
}
