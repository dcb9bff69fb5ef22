package installer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/database"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Dialer 打开 root 与业务账号连接
type Dialer interface {
	DialRoot(ctx context.Context, host string, port int, rootPassword string) (*gorm.DB, error)
	DialApp(ctx context.Context, host string, port int, user, password, dbName string) (*gorm.DB, error)
}

// Provisioner 以 root 身份创建数据库、账号并授权
type Provisioner func(ctx context.Context, root *gorm.DB, req *Request) error

// MySQLDialer 基于 go-sql-driver 的 Dialer
type MySQLDialer struct {
	Timeout time.Duration
	LogMode bool
}

// DialRoot 连接 MySQL 服务端（不指定数据库）
func (d MySQLDialer) DialRoot(ctx context.Context, host string, port int, rootPassword string) (*gorm.DB, error) {
	return d.dial(ctx, host, port, "root", rootPassword, "")
}

// DialApp 以业务账号连接目标数据库
func (d MySQLDialer) DialApp(ctx context.Context, host string, port int, user, password, dbName string) (*gorm.DB, error) {
	return d.dial(ctx, host, port, user, password, dbName)
}

func (d MySQLDialer) dial(ctx context.Context, host string, port int, user, password, dbName string) (*gorm.DB, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cfg := mysqldriver.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = dbName
	cfg.Timeout = timeout
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := database.OpenDSN(cfg.FormatDSN(), config.DatabaseConfig{MaxOpenConns: 2, LogMode: d.LogMode})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ProvisionMySQL 建库、建账号（已存在时重置密码）并授予该库全部权限
func ProvisionMySQL(ctx context.Context, root *gorm.DB, req *Request) error {
	statements, err := ProvisionStatements(req.DatabaseName, req.DatabaseUser, req.DatabasePassword)
	if err != nil {
		return err
	}
	db := root.WithContext(ctx)
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// ProvisionStatements 生成建库授权语句
func ProvisionStatements(dbName, user, password string) ([]string, error) {
	createDB, err := database.CreateDatabaseSQL(dbName)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateIdentifier(user); err != nil {
		return nil, err
	}
	pwd := quoteLiteral(password)
	return []string{
		createDB,
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY %s", user, pwd),
		fmt.Sprintf("ALTER USER '%s'@'%%' IDENTIFIED BY %s", user, pwd),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", dbName, user),
		"FLUSH PRIVILEGES",
	}, nil
}

// quoteLiteral 转义为 MySQL 字符串字面量
// CREATE USER 不支持预处理占位符
func quoteLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\x00", `\0`, "\n", `\n`, "\r", `\r`, "\x1a", `\Z`)
	return "'" + r.Replace(s) + "'"
}
