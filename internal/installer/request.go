package installer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/enteacher-core/internal/database"
	"github.com/enteacher-core/internal/seed"
)

// Request 安装向导提交的参数
type Request struct {
	ServerDomain      string `json:"server_domain" binding:"required"`
	ServerIP          string `json:"server_ip" binding:"required"`
	BackendPort       int    `json:"backend_port"`
	MySQLURL          string `json:"mysql_url"`
	MySQLHost         string `json:"mysql_host"`
	MySQLPort         int    `json:"mysql_port"`
	MySQLRootPassword string `json:"mysql_root_password" binding:"required"`
	DatabaseName      string `json:"database_name"`
	DatabaseUser      string `json:"database_user"`
	DatabasePassword  string `json:"database_password"`
	AdminUsername     string `json:"admin_username"`
	AdminPassword     string `json:"admin_password"`
	WechatAppID       string `json:"wechat_app_id"`
	WechatMchID       string `json:"wechat_mch_id"`
	WechatAPIKey      string `json:"wechat_api_key"`
	SMSProvider       string `json:"sms_provider"`
	SMSAPIKey         string `json:"sms_api_key"`
	SMSSignName       string `json:"sms_sign_name"`
}

// ApplyDefaults 填充未提交字段的默认值
func (r *Request) ApplyDefaults() {
	if r.BackendPort == 0 {
		r.BackendPort = 8001
	}
	if r.MySQLPort == 0 {
		r.MySQLPort = 3306
	}
	if r.DatabaseName == "" {
		r.DatabaseName = "enTeacher"
	}
	if r.DatabaseUser == "" {
		r.DatabaseUser = "admin"
	}
	if r.DatabasePassword == "" {
		r.DatabasePassword = "123456"
	}
	if r.AdminUsername == "" {
		r.AdminUsername = "root"
	}
	if r.AdminPassword == "" {
		r.AdminPassword = "123456"
	}
}

// Validate 校验会拼接进 SQL 的标识符
func (r *Request) Validate() error {
	if strings.TrimSpace(r.MySQLRootPassword) == "" {
		return fmt.Errorf("%w: mysql_root_password 不能为空", ErrInvalidRequest)
	}
	if err := database.ValidateIdentifier(r.DatabaseName); err != nil {
		return fmt.Errorf("%w: database_name %v", ErrInvalidRequest, err)
	}
	if err := database.ValidateIdentifier(r.DatabaseUser); err != nil {
		return fmt.Errorf("%w: database_user %v", ErrInvalidRequest, err)
	}
	if r.BackendPort < 1 || r.BackendPort > 65535 || r.MySQLPort < 1 || r.MySQLPort > 65535 {
		return fmt.Errorf("%w: 端口超出范围", ErrInvalidRequest)
	}
	return nil
}

// MySQLAddr 解析 MySQL 主机和端口，mysql_url 中的值优先
func (r *Request) MySQLAddr() (string, int) {
	host, port := r.MySQLHost, r.MySQLPort
	if r.MySQLURL != "" {
		if u, err := url.Parse(r.MySQLURL); err == nil {
			if h := u.Hostname(); h != "" {
				host = h
			}
			if p := u.Port(); p != "" {
				fmt.Sscanf(p, "%d", &port)
			}
		}
	}
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 3306
	}
	return host, port
}

func (r *Request) seedIntegrations() seed.Integrations {
	return seed.Integrations{
		Wechat: seed.WechatCredentials{AppID: r.WechatAppID, MchID: r.WechatMchID, APIKey: r.WechatAPIKey},
		SMS:    seed.SMSCredentials{Provider: r.SMSProvider, APIKey: r.SMSAPIKey, SignName: r.SMSSignName},
	}
}
