package controller

import (
	"github.com/enteacher-core/internal/response"
	"github.com/enteacher-core/internal/service"
	"github.com/gin-gonic/gin"
)

// OrderController 用户订单控制器
type OrderController struct {
	orders *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orders *service.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder 创建订单
// @Summary 创建订单
// @Description 锁定商品库存并扣减，库存不足时整单回滚
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateOrderRequest true "订单商品"
// @Success 200 {object} response.Response{data=models.Order} "成功"
// @Failure 400 {object} response.Response "库存不足"
// @Failure 403 {object} response.Response "兜底管理员不能下单"
// @Router /orders [post]
func (c *OrderController) CreateOrder(ctx *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	order, err := c.orders.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, order)
}

// ListOrders 当前用户订单列表
// @Summary 我的订单
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Order} "成功"
// @Router /orders [get]
func (c *OrderController) ListOrders(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orders, err := c.orders.List(ctx.Request.Context(), userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, orders)
}

// GetOrder 订单详情，只能查看自己的订单
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=models.Order} "成功"
// @Failure 404 {object} response.Response "订单不存在"
// @Router /orders/{id} [get]
func (c *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	order, err := c.orders.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Success(ctx, order)
}
