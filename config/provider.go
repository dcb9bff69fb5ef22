package config

import (
	"os"
	"strings"

	"github.com/enteacher-core/internal/store"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// 配置来源名称
const (
	SourceDatabaseURL  = "DATABASE_URL"
	SourceConfigFile   = "config_file"
	SourceInstallState = "install_state"
	SourceEnv          = "env"
	SourceDefault      = "default"
)

// Provider 配置来源，按字段返回可选值
type Provider interface {
	Name() string
	Lookup(key string) (string, bool)
}

// envBindings 字段与环境变量（含容器约定别名）的绑定，靠前的变量名优先
var envBindings = map[string][]string{
	"database.user":         {"DB_USER", "MYSQL_USER"},
	"database.password":     {"DB_PASSWORD", "MYSQL_PASSWORD"},
	"database.host":         {"DB_HOST", "MYSQL_HOST"},
	"database.port":         {"DB_PORT", "MYSQL_PORT"},
	"database.name":         {"DB_NAME", "MYSQL_DATABASE"},
	"site.ip":               {"SITE_IP"},
	"site.domain":           {"SITE_DOMAIN"},
	"site.backend_port":     {"SITE_PORT"},
	"jwt.secret":            {"JWT_SECRET"},
	"jwt.expire_minutes":    {"JWT_EXPIRE_MINUTES"},
	"cors.origins":          {"CORS_ORIGINS"},
	"wechat_pay.app_id":     {"WECHAT_PAY_APP_ID"},
	"wechat_pay.mch_id":     {"WECHAT_PAY_MCH_ID"},
	"wechat_pay.api_key":    {"WECHAT_PAY_API_KEY"},
	"wechat_pay.notify_url": {"WECHAT_PAY_NOTIFY_URL"},
	"sms.provider":          {"SMS_PROVIDER"},
	"sms.api_key":           {"SMS_API_KEY"},
	"sms.sign_name":         {"SMS_SIGN_NAME"},
	"admin.username":        {"DEFAULT_ADMIN_USERNAME"},
	"admin.password":        {"DEFAULT_ADMIN_PASSWORD"},
}

var defaultValues = map[string]string{
	"database.host":      "localhost",
	"database.port":      "3306",
	"site.ip":            "127.0.0.1",
	"site.domain":        "localhost",
	"site.backend_port":  "8001",
	"jwt.secret":         "supersecret",
	"jwt.expire_minutes": "1440",
	"admin.username":     "root",
	"admin.password":     "123456",
}

// databaseURLProvider 完整连接串覆盖，只提供 database.url
type databaseURLProvider struct{}

func (databaseURLProvider) Name() string { return SourceDatabaseURL }

func (databaseURLProvider) Lookup(key string) (string, bool) {
	if key != "database.url" {
		return "", false
	}
	v := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	return v, v != ""
}

// documentProvider 以 JSON 文档作为来源
type documentProvider struct {
	name string
	doc  store.Document
}

func (p documentProvider) Name() string { return p.name }

func (p documentProvider) Lookup(key string) (string, bool) {
	if key == "database.url" {
		return "", false
	}
	return p.doc.Lookup(key)
}

// NewConfigFileProvider 持久化配置文件来源
func NewConfigFileProvider(doc store.Document) Provider {
	return documentProvider{name: SourceConfigFile, doc: doc}
}

// NewInstallStateProvider 安装状态快照来源
// 快照中 config.database/site、admin 与 integrations 被映射为与配置文件相同的段
func NewInstallStateProvider(state store.Document) Provider {
	view := store.Document{}
	config := store.Document(state.Section("config"))
	if config != nil {
		view["database"] = config.Section("database")
		view["site"] = config.Section("site")
	}
	view["admin"] = state.Section("admin")
	integrations := store.Document(state.Section("integrations"))
	if integrations != nil {
		view["wechat_pay"] = integrations.Section("wechat")
		view["sms"] = integrations.Section("sms")
	}
	return documentProvider{name: SourceInstallState, doc: view}
}

// envProvider 环境变量来源，通过 viper 多名称绑定支持别名
type envProvider struct {
	v *viper.Viper
}

// NewEnvProvider 环境变量来源
func NewEnvProvider() Provider {
	v := viper.New()
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return envProvider{v: v}
}

func (envProvider) Name() string { return SourceEnv }

func (p envProvider) Lookup(key string) (string, bool) {
	s := strings.TrimSpace(cast.ToString(p.v.Get(key)))
	return s, s != ""
}

type defaultProvider struct{}

func (defaultProvider) Name() string { return SourceDefault }

func (defaultProvider) Lookup(key string) (string, bool) {
	v, ok := defaultValues[key]
	return v, ok
}

// DefaultProviders 按优先级从高到低排列的来源：
// DATABASE_URL > 配置文件 > 安装状态 > 环境变量 > 默认值
func DefaultProviders(configDoc, installState store.Document) []Provider {
	return []Provider{
		databaseURLProvider{},
		NewConfigFileProvider(configDoc),
		NewInstallStateProvider(installState),
		NewEnvProvider(),
		defaultProvider{},
	}
}
