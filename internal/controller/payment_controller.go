package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

// PaymentController 微信支付控制器
type PaymentController struct {
	payments *service.PaymentService
}

// NewPaymentController 创建支付控制器
func NewPaymentController(payments *service.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateWechatPayment 下单并生成微信支付参数
// @Summary 微信支付下单
// @Description 创建订单与待支付记录，返回前端调起支付所需参数
// @Tags 支付
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateOrderRequest true "订单商品"
// @Success 200 {object} response.Response{data=service.PaymentResult} "成功"
// @Failure 400 {object} response.Response "库存不足"
// @Router /payments/wechat [post]
func (c *PaymentController) CreateWechatPayment(ctx *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	result, err := c.payments.CreateWechatPayment(ctx.Request.Context(), userID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, result)
}

// WechatNotify 微信支付回调
// @Summary 微信支付回调
// @Description 支持 JSON 与表单格式，配置了 API 密钥时必须携带有效签名
// @Tags 支付
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Response{data=object} "成功"
// @Failure 400 {object} response.Response "签名错误"
// @Failure 404 {object} response.Response "支付记录不存在"
// @Router /payments/wechat/notify [post]
func (c *PaymentController) WechatNotify(ctx *gin.Context) {
	raw, err := notifyBody(ctx)
	if err != nil {
		response.Fail(ctx, http.StatusBadRequest, "参数解析失败")
		return
	}
	if _, err := c.payments.HandleNotify(ctx.Request.Context(), raw); err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, gin.H{"status": "success"})
}

// notifyBody 读取回调原文，表单格式转换为 JSON
func notifyBody(ctx *gin.Context) ([]byte, error) {
	if strings.Contains(ctx.GetHeader("Content-Type"), "application/x-www-form-urlencoded") {
		if err := ctx.Request.ParseForm(); err != nil {
			return nil, err
		}
		params := make(map[string]string, len(ctx.Request.PostForm))
		for k, v := range ctx.Request.PostForm {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
		return json.Marshal(params)
	}
	return ctx.GetRawData()
}

// JSConfig 微信 JS-SDK 配置
// @Summary 微信 JS-SDK 配置
// @Tags 支付
// @Produce json
// @Param url query string false "当前页面地址"
// @Success 200 {object} response.Response{data=service.JSConfig} "成功"
// @Router /payments/wechat/js-config [get]
func (c *PaymentController) JSConfig(ctx *gin.Context) {
	response.Success(ctx, c.payments.JSConfig(ctx.Query("url")))
}
