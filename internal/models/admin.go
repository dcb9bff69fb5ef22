package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminUserProfile 后台用户档案
type AdminUserProfile struct {
	ID         int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname   string                      `gorm:"type:varchar(100);not null;comment:昵称" json:"nickname"`
	Phone      string                      `gorm:"uniqueIndex;type:varchar(50);not null;comment:手机号" json:"phone"`
	Level      string                      `gorm:"type:varchar(50);not null;comment:等级" json:"level"`
	RegisterAt time.Time                   `gorm:"not null;comment:注册时间" json:"register_at"`
	Spend      float64                     `gorm:"type:decimal(10,2);default:0;comment:消费" json:"spend"`
	Tests      int                         `gorm:"default:0;comment:测试次数" json:"tests"`
	Benefits   string                      `gorm:"type:text;comment:权益" json:"benefits"`
	Recharges  datatypes.JSONSlice[string] `gorm:"comment:充值记录" json:"recharges"`
	Note       string                      `gorm:"type:varchar(255);default:'';comment:备注" json:"note"`
}

// TableName 指定表名
func (AdminUserProfile) TableName() string {
	return "admin_user_profiles"
}

// AdminOrder 后台订单（外部订单号为主键）
type AdminOrder struct {
	ID        string    `gorm:"primaryKey;type:varchar(64);comment:订单号" json:"id"`
	User      string    `gorm:"type:varchar(100);not null;comment:用户" json:"user"`
	CreatedAt time.Time `gorm:"not null;comment:下单时间" json:"created_at"`
	Status    string    `gorm:"type:varchar(20);default:待支付;comment:状态" json:"status"`
	Channel   string    `gorm:"type:varchar(50);default:'';comment:渠道" json:"channel"`
	Amount    float64   `gorm:"type:decimal(10,2);not null;comment:金额" json:"amount"`
	Remark    string    `gorm:"type:text;comment:备注" json:"remark"`

	Items []AdminOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName 指定表名
func (AdminOrder) TableName() string {
	return "admin_orders"
}

// AdminOrderItem 后台订单明细
type AdminOrderItem struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  string  `gorm:"index;type:varchar(64);not null;comment:关联订单" json:"-"`
	Name     string  `gorm:"type:varchar(200);not null;comment:名称" json:"name"`
	Quantity int     `gorm:"default:1;comment:数量" json:"quantity"`
	Price    float64 `gorm:"type:decimal(10,2);default:0;comment:单价" json:"price"`
}

// TableName 指定表名
func (AdminOrderItem) TableName() string {
	return "admin_order_items"
}
