package service

import (
	"errors"
	"net/http"
)

// BizError 业务错误，Status 为 HTTP 状态码
type BizError struct {
	Status  int
	Code    int
	Message string
}

func (e *BizError) Error() string {
	return e.Message
}

// 业务错误码定义
const (
	ErrCodeBadRequest          = 4000
	ErrCodeUsernameExists      = 4001
	ErrCodePhoneExists         = 4002
	ErrCodePhoneInvalid        = 4003
	ErrCodeCodeMissing         = 4004
	ErrCodeCodeExpired         = 4005
	ErrCodeCodeMismatch        = 4006
	ErrCodeStockInsufficient   = 4007
	ErrCodeSignInvalid         = 4008
	ErrCodeBadCredentials      = 4010
	ErrCodeTokenInvalid        = 4011
	ErrCodeUserNotFound        = 4012
	ErrCodeForbidden           = 4030
	ErrCodeNotFound            = 4040
	ErrCodeInternal            = 5000
	ErrCodeSeedFailed          = 5001
	ErrCodeDatabaseUnavailable = 5030
)

// 错误消息定义
var (
	ErrUsernameExists      = &BizError{Status: http.StatusBadRequest, Code: ErrCodeUsernameExists, Message: "Username already exists"}
	ErrPhoneExists         = &BizError{Status: http.StatusBadRequest, Code: ErrCodePhoneExists, Message: "Phone already exists"}
	ErrPhoneInvalid        = &BizError{Status: http.StatusBadRequest, Code: ErrCodePhoneInvalid, Message: "手机号格式不正确"}
	ErrVerifyCodeMissing   = &BizError{Status: http.StatusBadRequest, Code: ErrCodeCodeMissing, Message: "请先获取验证码"}
	ErrVerifyCodeExpired   = &BizError{Status: http.StatusBadRequest, Code: ErrCodeCodeExpired, Message: "验证码已过期，请重新获取"}
	ErrVerifyCodeMismatch  = &BizError{Status: http.StatusBadRequest, Code: ErrCodeCodeMismatch, Message: "验证码错误"}
	ErrStockInsufficient   = &BizError{Status: http.StatusBadRequest, Code: ErrCodeStockInsufficient, Message: "Insufficient stock"}
	ErrEmptyOrder          = &BizError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "订单商品不能为空"}
	ErrNotifySignInvalid   = &BizError{Status: http.StatusBadRequest, Code: ErrCodeSignInvalid, Message: "签名验证失败"}
	ErrBadCredentials      = &BizError{Status: http.StatusUnauthorized, Code: ErrCodeBadCredentials, Message: "Incorrect username or password"}
	ErrTokenInvalid        = &BizError{Status: http.StatusUnauthorized, Code: ErrCodeTokenInvalid, Message: "Invalid token"}
	ErrUserNotFound        = &BizError{Status: http.StatusUnauthorized, Code: ErrCodeUserNotFound, Message: "User not found"}
	ErrForbidden           = &BizError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: "Not enough permissions"}
	ErrProductNotFound     = &BizError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Product not found"}
	ErrCourseNotFound      = &BizError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Course not found"}
	ErrOrderNotFound       = &BizError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Order not found"}
	ErrPaymentNotFound     = &BizError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Payment not found"}
	ErrAdminOrderMissing   = &BizError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "订单数据不存在或尚未初始化。"}
	ErrUserCreateFailed    = &BizError{Status: http.StatusInternalServerError, Code: ErrCodeInternal, Message: "无法创建或获取用户"}
	ErrSeedFailed          = &BizError{Status: http.StatusInternalServerError, Code: ErrCodeSeedFailed, Message: "初始化数据库失败，请检查数据库配置。"}
	ErrDatabaseUnavailable = &BizError{Status: http.StatusServiceUnavailable, Code: ErrCodeDatabaseUnavailable, Message: "数据库连接失败，请稍后重试"}
)

// NewBizError 创建新的业务错误
func NewBizError(status, code int, message string) *BizError {
	return &BizError{Status: status, Code: code, Message: message}
}

// AsBizError 提取业务错误，其他错误按 500 处理
func AsBizError(err error) *BizError {
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr
	}
	return &BizError{Status: http.StatusInternalServerError, Code: ErrCodeInternal, Message: "服务器内部错误"}
}
