package models

// Payment 支付记录
type Payment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64  `gorm:"index;not null;comment:关联订单" json:"order_id"`
	Provider  string `gorm:"type:varchar(50);default:wechat;comment:支付渠道" json:"provider"`
	Status    string `gorm:"type:varchar(20);default:pending;comment:支付状态" json:"status"`
	RawNotify string `gorm:"type:varchar(2000);default:'';comment:回调原文" json:"raw_notify"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
