package models

// SystemSetting 系统设置，(category, key) 唯一
type SystemSetting struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Category    string `gorm:"uniqueIndex:uq_system_setting_category_key;type:varchar(50);not null;comment:分类" json:"category"`
	Key         string `gorm:"column:key;uniqueIndex:uq_system_setting_category_key;type:varchar(100);not null;comment:键" json:"key"`
	Value       string `gorm:"type:text;comment:值" json:"value"`
	Description string `gorm:"type:varchar(255);default:'';comment:说明" json:"description"`
}

// TableName 指定表名
func (SystemSetting) TableName() string {
	return "system_settings"
}
