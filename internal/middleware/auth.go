package middleware

import (
	"net/http"
	"strings"

	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Auth JWT 认证中间件，认证通过后将当前主体存入上下文
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "未提供认证令牌")
			c.Abort()
			return
		}

		// 检查 Bearer 前缀
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Fail(c, http.StatusUnauthorized, "认证令牌格式错误")
			c.Abort()
			return
		}

		principal, err := auth.CurrentUser(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			bizErr := service.AsBizError(err)
			response.FailWithCode(c, bizErr.Status, bizErr.Code, bizErr.Message)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin 管理员权限校验，需在 Auth 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil || !principal.IsAdmin() {
			response.FailWithCode(c, service.ErrForbidden.Status, service.ErrForbidden.Code, service.ErrForbidden.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentPrincipal 读取 Auth 写入的当前主体
func CurrentPrincipal(c *gin.Context) *service.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*service.Principal)
	return principal
}
