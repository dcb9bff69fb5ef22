package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/response"
	"github.com/gin-gonic/gin"
)

// MetricsAuth 指标端点认证中间件
// 未配置 token 时放行；否则接受 Bearer 头、token 查询参数或白名单 IP（支持 CIDR）
func MetricsAuth(cfg config.MonitoringConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.MetricsToken == "" {
			c.Next()
			return
		}

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok && token == cfg.MetricsToken {
			c.Next()
			return
		}
		if c.Query("token") == cfg.MetricsToken {
			c.Next()
			return
		}
		if ipAllowed(c.ClientIP(), cfg.MetricsIPWhitelist) {
			c.Next()
			return
		}

		response.Fail(c, http.StatusUnauthorized, "未授权访问")
		c.Abort()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func ipAllowed(clientIP string, whitelist []string) bool {
	for _, allowed := range whitelist {
		switch {
		case allowed == "*", allowed == clientIP:
			return true
		case strings.Contains(allowed, "/") && isIPInCIDR(clientIP, allowed):
			return true
		}
	}
	return false
}

// isIPInCIDR 检查 IP 是否在 CIDR 范围内
func isIPInCIDR(ip, cidr string) bool {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}
	return ipNet.Contains(parsedIP)
}
