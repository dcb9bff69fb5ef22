package models

import (
	"time"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username            string     `gorm:"uniqueIndex;type:varchar(50);not null;comment:用户名" json:"username"`
	Phone               *string    `gorm:"uniqueIndex:idx_users_phone;type:varchar(20);comment:手机号" json:"phone,omitempty"`
	PasswordHash        string     `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	Role                string     `gorm:"type:varchar(20);default:user;comment:角色" json:"role"`
	MembershipLevel     string     `gorm:"type:varchar(50);default:free;comment:会员等级" json:"membership_level"`
	MembershipExpiresAt *time.Time `gorm:"comment:会员到期时间" json:"membership_expires_at,omitempty"`
	CreatedAt           time.Time  `gorm:"comment:创建时间" json:"created_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
