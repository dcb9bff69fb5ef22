package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/utils"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	paymentProviderWechat = "wechat"
	paymentStatusPending  = "pending"
	paymentStatusPaid     = "paid"
	rawNotifyMaxRunes     = 2000
)

// PrepayParams 前端调起支付所需参数
type PrepayParams struct {
	AppID     string `json:"appId"`
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

// PaymentResult 下单支付结果
type PaymentResult struct {
	OrderID      int64        `json:"orderId"`
	PaymentID    int64        `json:"paymentId"`
	TotalAmount  float64      `json:"totalAmount"`
	PrepayParams PrepayParams `json:"prepayParams"`
}

// JSConfig 微信 JS-SDK 配置
type JSConfig struct {
	AppID     string `json:"appId"`
	Timestamp string `json:"timestamp"`
	NonceStr  string `json:"nonceStr"`
	Signature string `json:"signature"`
}

// PaymentService 微信支付（模拟网关）
type PaymentService struct {
	db     *gorm.DB
	orders *OrderService
	wechat config.WechatPaySettings
	log    *zap.Logger
	now    func() time.Time
}

// NewPaymentService 创建支付服务，wechat 为 nil 时使用空商户配置
func NewPaymentService(db *gorm.DB, orders *OrderService, wechat *config.WechatPaySettings, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &PaymentService{db: db, orders: orders, log: log, now: time.Now}
	if wechat != nil {
		s.wechat = *wechat
	}
	return s
}

// CreateWechatPayment 创建订单与待支付记录，返回调起支付参数
func (s *PaymentService) CreateWechatPayment(ctx context.Context, userID int64, req *CreateOrderRequest) (*PaymentResult, error) {
	order, err := s.orders.Create(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	payment := &models.Payment{OrderID: order.ID, Provider: paymentProviderWechat, Status: paymentStatusPending}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return &PaymentResult{
		OrderID:      order.ID,
		PaymentID:    payment.ID,
		TotalAmount:  order.TotalAmount,
		PrepayParams: s.prepayParams(),
	}, nil
}

// prepayParams 生成 MD5 签名的调起支付参数
func (s *PaymentService) prepayParams() PrepayParams {
	params := PrepayParams{
		AppID:     s.wechat.AppID,
		TimeStamp: strconv.FormatInt(s.now().Unix(), 10),
		NonceStr:  utils.GenerateNonce(),
		Package:   "prepay_id=" + utils.GenerateOrderNo("wx"),
		SignType:  "MD5",
	}
	_, params.PaySign = utils.WechatSign(map[string]interface{}{
		"appId":     params.AppID,
		"timeStamp": params.TimeStamp,
		"nonceStr":  params.NonceStr,
		"package":   params.Package,
		"signType":  params.SignType,
	}, s.wechat.APIKey)
	return params
}

// JSConfig 生成 JS-SDK 配置签名
func (s *PaymentService) JSConfig(url string) JSConfig {
	nonce := utils.GenerateNonce()
	ts := s.now().Unix()
	return JSConfig{
		AppID:     s.wechat.AppID,
		Timestamp: strconv.FormatInt(ts, 10),
		NonceStr:  nonce,
		Signature: utils.JSSDKSignature(s.wechat.APIKey, url, nonce, ts),
	}
}

// HandleNotify 处理支付回调，将支付记录与订单标记为已支付
// 回调携带 out_trade_no/order_id 时按订单匹配，否则取最早的待支付记录
func (s *PaymentService) HandleNotify(ctx context.Context, raw []byte) (*models.Payment, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	params := map[string]interface{}{}
	if err := json.Unmarshal(raw, &params); err != nil {
		s.log.Debug("支付回调不是 JSON", zap.Error(err))
	}
	// 配置了 API 密钥时回调必须带有效签名
	if s.wechat.APIKey != "" && !utils.VerifyWechatSign(params, s.wechat.APIKey) {
		return nil, ErrNotifySignInvalid
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Order("id ASC")
		if orderID := notifyOrderID(params); orderID != 0 {
			query = query.Where("order_id = ?", orderID)
		} else {
			query = query.Where("status = ?", paymentStatusPending)
		}
		if err := query.First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		payment.Status = paymentStatusPaid
		payment.RawNotify = truncateRunes(string(raw), rawNotifyMaxRunes)
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}
		return s.orders.MarkPaid(tx, payment.OrderID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("支付回调处理完成", zap.Int64("payment_id", payment.ID), zap.Int64("order_id", payment.OrderID))
	return &payment, nil
}

func notifyOrderID(params map[string]interface{}) int64 {
	for _, key := range []string{"out_trade_no", "order_id", "orderId"} {
		if v, ok := params[key]; ok {
			if id, err := cast.ToInt64E(v); err == nil && id > 0 {
				return id
			}
		}
	}
	return 0
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
