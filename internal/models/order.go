package models

// 订单状态
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order 用户订单
type Order struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64   `gorm:"index;not null;comment:下单用户" json:"user_id"`
	TotalAmount float64 `gorm:"type:decimal(10,2);default:0;comment:总金额" json:"total_amount"`
	Status      string  `gorm:"type:varchar(20);default:pending;comment:订单状态" json:"status"`

	// 关联关系
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细
type OrderItem struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64   `gorm:"index;not null;comment:关联订单" json:"order_id"`
	ProductID int64   `gorm:"index;not null;comment:关联商品" json:"product_id"`
	Quantity  int     `gorm:"default:1;comment:数量" json:"quantity"`
	Price     float64 `gorm:"type:decimal(10,2);default:0;comment:单价" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
