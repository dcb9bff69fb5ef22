package service

import (
	"context"
	"errors"
	"math"

	"github.com/enteacher-core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderItemInput 下单商品
type OrderItemInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 下单参数
type CreateOrderRequest struct {
	Items []OrderItemInput `json:"items" binding:"required,dive"`
}

// OrderService 订单服务
type OrderService struct {
	db *gorm.DB
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Create 创建订单
// 事务内逐个锁定商品行扣减库存，任一商品库存不足则整单回滚
func (s *OrderService) Create(ctx context.Context, userID int64, req *CreateOrderRequest) (*models.Order, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &models.Order{UserID: userID, Status: models.OrderStatusPending}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createInTx(tx, order, req.Items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, order.ID, userID)
}

func (s *OrderService) createInTx(tx *gorm.DB, order *models.Order, items []OrderItemInput) error {
	if err := tx.Create(order).Error; err != nil {
		return err
	}

	var total float64
	for _, item := range items {
		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStockInsufficient
		}
		if err != nil {
			return err
		}
		if product.Stock < item.Quantity {
			return ErrStockInsufficient
		}

		if err := tx.Model(&product).UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
			return err
		}
		line := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		total += product.Price * float64(item.Quantity)
	}

	order.TotalAmount = math.Round(total*100) / 100
	return tx.Model(order).UpdateColumn("total_amount", order.TotalAmount).Error
}

// Get 获取订单，只能查看 userID 自己的订单
func (s *OrderService) Get(ctx context.Context, id, userID int64) (*models.Order, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List 列出 userID 自己的订单
func (s *OrderService) List(ctx context.Context, userID int64) ([]models.Order, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid 标记订单已支付
func (s *OrderService) MarkPaid(tx *gorm.DB, orderID int64) error {
	return tx.Model(&models.Order{}).Where("id = ?", orderID).Update("status", models.OrderStatusPaid).Error
}
