package installer

import (
	"context"
	"strconv"

	"github.com/enteacher-core/internal/database"
	"go.uber.org/zap"
)

// ConnectionResult root 连接测试结果
type ConnectionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TestConnection 测试 root 账号能否连接，失败时返回结果而不是错误
func (i *Installer) TestConnection(ctx context.Context, host string, port int, rootPassword string) ConnectionResult {
	db, err := i.dialer.DialRoot(ctx, host, port, rootPassword)
	if err != nil {
		i.log.Info("MySQL 连接测试失败", zap.String("host", host), zap.Int("port", port), zap.Error(err))
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	defer database.Close(db)
	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	return ConnectionResult{Success: true}
}

// DatabaseCheck 后台数据库检测参数
type DatabaseCheck struct {
	Host         string  `json:"host" binding:"required"`
	Port         int     `json:"port"`
	DBName       *string `json:"db_name"`
	DBUser       *string `json:"db_user"`
	DBPassword   *string `json:"db_password"`
	RootPassword string  `json:"root_password" binding:"required"`
}

// DatabaseCheckResult 后台数据库检测结果
type DatabaseCheckResult struct {
	RootConnected         bool   `json:"root_connected"`
	DatabaseExists        bool   `json:"database_exists"`
	DatabaseAuthenticated bool   `json:"database_authenticated"`
	Message               string `json:"message"`
}

// CheckDatabase 依次检查 root 连接、目标库是否存在、业务账号能否登录
// 未提供业务库信息时只检查 root
func (i *Installer) CheckDatabase(ctx context.Context, check DatabaseCheck) DatabaseCheckResult {
	if check.Port == 0 {
		check.Port = 3306
	}
	root, err := i.dialer.DialRoot(ctx, check.Host, check.Port, check.RootPassword)
	if err != nil {
		return DatabaseCheckResult{Message: err.Error()}
	}
	defer database.Close(root)

	result := DatabaseCheckResult{RootConnected: true}
	if check.DBName == nil || *check.DBName == "" {
		result.Message = "已完成 root 连接验证，已跳过业务数据库检查。"
		return result
	}

	var n int64
	err = root.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?", *check.DBName).
		Scan(&n).Error
	if err != nil {
		result.Message = "查询数据库列表失败: " + err.Error()
		return result
	}
	result.DatabaseExists = n > 0
	if !result.DatabaseExists {
		result.Message = "root 连接成功，数据库 " + *check.DBName + " 不存在。"
		return result
	}
	if check.DBUser == nil || *check.DBUser == "" {
		result.Message = "root 连接成功，数据库已存在，未提供业务账号。"
		return result
	}

	password := ""
	if check.DBPassword != nil {
		password = *check.DBPassword
	}
	app, err := i.dialer.DialApp(ctx, check.Host, check.Port, *check.DBUser, password, *check.DBName)
	if err != nil {
		result.Message = "业务账号无法登录数据库: " + err.Error()
		return result
	}
	database.Close(app)
	result.DatabaseAuthenticated = true
	result.Message = "数据库连接正常，业务账号验证通过。"
	return result
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
