package models

import (
	"time"
)

// MembershipSetting 会员等级
type MembershipSetting struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Level        string  `gorm:"uniqueIndex;type:varchar(50);not null;comment:等级" json:"level"`
	Price        float64 `gorm:"type:decimal(10,2);not null;comment:价格" json:"price"`
	DurationDays int     `gorm:"default:0;comment:有效天数" json:"duration_days"`
	Description  string  `gorm:"type:varchar(255);default:'';comment:说明" json:"description"`
}

// TableName 指定表名
func (MembershipSetting) TableName() string {
	return "membership_settings"
}

// RechargeRecord 充值记录
type RechargeRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserDisplay string    `gorm:"type:varchar(50);not null;comment:用户" json:"user_display"`
	Level       string    `gorm:"type:varchar(50);not null;comment:等级" json:"level"`
	Amount      float64   `gorm:"type:decimal(10,2);not null;comment:金额" json:"amount"`
	Channel     string    `gorm:"type:varchar(50);default:'';comment:渠道" json:"channel"`
	OrderNo     string    `gorm:"uniqueIndex;type:varchar(64);not null;comment:订单号" json:"order_no"`
	PaidAt      time.Time `gorm:"not null;comment:支付时间" json:"paid_at"`
}

// TableName 指定表名
func (RechargeRecord) TableName() string {
	return "recharge_records"
}

// AdminDashboardStat 后台首页统计卡片
type AdminDashboardStat struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Label string `gorm:"uniqueIndex;type:varchar(100);not null;comment:名称" json:"label"`
	Value string `gorm:"type:varchar(50);default:'';comment:数值" json:"value"`
	Note  string `gorm:"type:varchar(255);default:'';comment:备注" json:"note"`
}

// TableName 指定表名
func (AdminDashboardStat) TableName() string {
	return "admin_dashboard_stats"
}
