package controller

import (
	"net/http"
	"strconv"

	"github.com/enteacher-core/internal/logger"
	"github.com/enteacher-core/internal/middleware"
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail 按业务错误返回，非业务错误记录日志后返回 500
func fail(ctx *gin.Context, err error) {
	bizErr := service.AsBizError(err)
	if bizErr.Code == service.ErrCodeInternal {
		logger.Logger.Error("请求处理失败",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
	}
	response.FailWithCode(ctx, bizErr.Status, bizErr.Code, bizErr.Message)
}

// bindJSON 绑定请求体，失败时直接返回 400
func bindJSON(ctx *gin.Context, v interface{}) bool {
	if err := ctx.ShouldBindJSON(v); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "参数错误: "+err.Error())
		return false
	}
	return true
}

// currentUserID 当前数据库用户 ID，兜底管理员不能下单或查看订单
func currentUserID(ctx *gin.Context) (int64, bool) {
	principal := middleware.CurrentPrincipal(ctx)
	if principal == nil {
		fail(ctx, service.ErrForbidden)
		return 0, false
	}
	id, ok := principal.UserID()
	if !ok {
		fail(ctx, service.ErrForbidden)
		return 0, false
	}
	return id, true
}

// paramID 解析路径中的数字 ID
func paramID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(ctx, http.StatusBadRequest, "ID 格式错误")
		return 0, false
	}
	return id, true
}
