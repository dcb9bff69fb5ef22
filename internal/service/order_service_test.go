package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestOrderService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db)
	ctx := context.Background()
	book := createProduct(t, db, "Phonics Book", 19.9, 5)
	card := createProduct(t, db, "Flash Cards", 5.5, 10)

	order, err := svc.Create(ctx, 7, &CreateOrderRequest{Items: []OrderItemInput{
		{ProductID: book.ID, Quantity: 2},
		{ProductID: card.ID, Quantity: 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(7), order.UserID)
	assert.InDelta(t, 45.3, order.TotalAmount, 0.001)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 3, stockOf(t, db, book.ID))
	assert.Equal(t, 9, stockOf(t, db, card.ID))
}

func TestOrderService_InsufficientStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db)
	ctx := context.Background()
	book := createProduct(t, db, "Phonics Book", 19.9, 5)
	card := createProduct(t, db, "Flash Cards", 5.5, 1)

	_, err := svc.Create(ctx, 1, &CreateOrderRequest{Items: []OrderItemInput{
		{ProductID: book.ID, Quantity: 2},
		{ProductID: card.ID, Quantity: 3},
	}})
	assert.ErrorIs(t, err, ErrStockInsufficient)

	// 整单回滚，先扣减的库存恢复
	assert.Equal(t, 5, stockOf(t, db, book.ID))
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)

	_, err = svc.Create(ctx, 1, &CreateOrderRequest{Items: []OrderItemInput{{ProductID: 999, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrStockInsufficient)

	_, err = svc.Create(ctx, 1, &CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestOrderService_ListAndGetAreScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db)
	ctx := context.Background()
	book := createProduct(t, db, "Phonics Book", 10, 10)

	mine, err := svc.Create(ctx, 1, &CreateOrderRequest{Items: []OrderItemInput{{ProductID: book.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, &CreateOrderRequest{Items: []OrderItemInput{{ProductID: book.ID, Quantity: 1}}})
	require.NoError(t, err)

	orders, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	_, err = svc.Get(ctx, mine.ID, 2)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// 0 不是通配，不会列出任何人的订单
	none, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	_, err = svc.Get(ctx, mine.ID, 0)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentService_WechatFlow(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db)
	wechat := &config.WechatPaySettings{AppID: "wx-app", MchID: "mch", APIKey: "api-key"}
	svc := NewPaymentService(db, orders, wechat, nil)
	ctx := context.Background()
	book := createProduct(t, db, "Phonics Book", 10, 10)

	result, err := svc.CreateWechatPayment(ctx, 3, &CreateOrderRequest{Items: []OrderItemInput{{ProductID: book.ID, Quantity: 2}}})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, result.TotalAmount, 0.001)
	params := result.PrepayParams
	assert.Equal(t, "wx-app", params.AppID)
	assert.Equal(t, "MD5", params.SignType)
	assert.Len(t, params.NonceStr, 32)

	_, expected := utils.WechatSign(map[string]interface{}{
		"appId":     params.AppID,
		"timeStamp": params.TimeStamp,
		"nonceStr":  params.NonceStr,
		"package":   params.Package,
		"signType":  params.SignType,
	}, "api-key")
	assert.Equal(t, expected, params.PaySign)

	notify := map[string]interface{}{"out_trade_no": result.OrderID, "result_code": "SUCCESS"}
	_, notify["sign"] = utils.WechatSign(notify, "api-key")
	raw, err := json.Marshal(notify)
	require.NoError(t, err)
	payment, err := svc.HandleNotify(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, paymentStatusPaid, payment.Status)
	assert.Equal(t, string(raw), payment.RawNotify)

	order, err := orders.Get(ctx, result.OrderID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestPaymentService_NotifySignature(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderService(db)
	svc := NewPaymentService(db, orders, &config.WechatPaySettings{AppID: "wx", APIKey: "k"}, nil)
	ctx := context.Background()
	book := createProduct(t, db, "Phonics Book", 10, 10)

	result, err := svc.CreateWechatPayment(ctx, 1, &CreateOrderRequest{Items: []OrderItemInput{{ProductID: book.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.HandleNotify(ctx, []byte(`{"order_id": 1, "sign": "BAD"}`))
	assert.ErrorIs(t, err, ErrNotifySignInvalid)

	// 缺少签名同样拒绝，支付状态不变
	_, err = svc.HandleNotify(ctx, []byte(`{"order_id": 1, "result_code": "SUCCESS"}`))
	assert.ErrorIs(t, err, ErrNotifySignInvalid)
	var pending models.Payment
	require.NoError(t, db.Where("order_id = ?", result.OrderID).First(&pending).Error)
	assert.Equal(t, paymentStatusPending, pending.Status)

	params := map[string]interface{}{"order_id": float64(result.OrderID), "result_code": "SUCCESS"}
	_, params["sign"] = utils.WechatSign(params, "k")
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	_, err = svc.HandleNotify(ctx, raw)
	assert.NoError(t, err)
}

func TestPaymentService_NotifyWithoutPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPaymentService(db, NewOrderService(db), nil, nil)

	_, err := svc.HandleNotify(context.Background(), []byte("<xml></xml>"))
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_JSConfig(t *testing.T) {
	svc := NewPaymentService(nil, nil, &config.WechatPaySettings{AppID: "wx", APIKey: "k"}, nil)

	cfg := svc.JSConfig("https://shop.example.com/pay")
	assert.Equal(t, "wx", cfg.AppID)
	assert.Len(t, cfg.Signature, 64)

	ts, err := json.Number(cfg.Timestamp).Int64()
	require.NoError(t, err)
	assert.Equal(t, utils.JSSDKSignature("k", "https://shop.example.com/pay", cfg.NonceStr, ts), cfg.Signature)
}
