package seed

import (
	"context"
	"fmt"

	"github.com/enteacher-core/internal/models"
	"gorm.io/gorm"
)

const phoneIndex = "idx_users_phone"

// CreateSchema 建表（已存在的表不变），并补齐旧版 users 表缺失的 phone 列
func CreateSchema(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := migrateUserPhone(db); err != nil {
		return fmt.Errorf("迁移 users.phone 失败: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("AutoMigrate 失败: %w", err)
	}
	return nil
}

// migrateUserPhone 旧版 users 表没有 phone 列时：加列、用 username 回填、建唯一索引
func migrateUserPhone(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&models.User{}) || m.HasColumn(&models.User{}, "Phone") {
		return nil
	}
	if err := m.AddColumn(&models.User{}, "Phone"); err != nil {
		return err
	}
	err := db.Model(&models.User{}).
		Where("phone IS NULL OR phone = ?", "").
		Update("phone", gorm.Expr("username")).Error
	if err != nil {
		return err
	}
	if !m.HasIndex(&models.User{}, phoneIndex) {
		return m.CreateIndex(&models.User{}, phoneIndex)
	}
	return nil
}
