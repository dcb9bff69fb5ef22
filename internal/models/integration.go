package models

import (
	"gorm.io/datatypes"
)

// 第三方集成提供方
const (
	ProviderWechatPay = "wechat_pay"
	ProviderSMS       = "sms"
)

// 集成配置 JSON 中的字段名，与预置数据 integrations.json 保持一致
const (
	IntegrationKeyAppID    = "appId"
	IntegrationKeyMchID    = "mchId"
	IntegrationKeyAPIKey   = "apiKey"
	IntegrationKeyProvider = "provider"
	IntegrationKeySignName = "signName"
)

// IntegrationConfig 第三方集成配置
type IntegrationConfig struct {
	ID       int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider string            `gorm:"uniqueIndex:uk_integration_configs_provider;type:varchar(50);not null;comment:提供方" json:"provider"`
	Label    string            `gorm:"type:varchar(100);default:'';comment:名称" json:"label"`
	IsActive bool              `gorm:"not null;comment:是否启用" json:"is_active"`
	Config   datatypes.JSONMap `gorm:"comment:配置" json:"config"`
}

// TableName 指定表名
func (IntegrationConfig) TableName() string {
	return "integration_configs"
}
