package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const systemConfigCacheTTL = 1 * time.Hour

var systemConfigCacheKey = utils.GetCacheKey("system_config", "snapshot")

// SystemConfig 后台系统配置（扁平结构）
type SystemConfig struct {
	ServerIP      string  `json:"server_ip" binding:"required"`
	Domain        string  `json:"domain" binding:"required"`
	LoginUser     string  `json:"login_user" binding:"required"`
	LoginPassword string  `json:"login_password"`
	DBHost        string  `json:"db_host" binding:"required"`
	DBPort        int     `json:"db_port" binding:"required,min=1,max=65535"`
	DBName        string  `json:"db_name" binding:"required"`
	DBUser        string  `json:"db_user" binding:"required"`
	DBPassword    string  `json:"db_password" binding:"required"`
	RootPassword  string  `json:"root_password" binding:"required"`
	WechatAppID   *string `json:"wechat_app_id"`
	WechatMchID   *string `json:"wechat_mch_id"`
	WechatAPIKey  *string `json:"wechat_api_key"`
	SMSProvider   *string `json:"sms_provider"`
	SMSAPIKey     *string `json:"sms_api_key"`
	SMSSignName   *string `json:"sms_sign_name"`
}

// DefaultSystemConfig 未写入任何设置时的配置
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		ServerIP:      "10.10.10.8",
		Domain:        "english.example.com",
		LoginUser:     "root",
		LoginPassword: "Admin@123",
		DBHost:        "127.0.0.1",
		DBPort:        3306,
		DBName:        "english_db",
		DBUser:        "english_user",
		DBPassword:    "db_pass_123",
		RootPassword:  "Ad123456",
	}
}

// settingField 扁平字段与 (category, key) 的对应关系
type settingField struct {
	category string
	key      string
	get      func(c *SystemConfig) string
	set      func(c *SystemConfig, v string)
}

var settingFields = []settingField{
	{"site", "ip", func(c *SystemConfig) string { return c.ServerIP }, func(c *SystemConfig, v string) { c.ServerIP = v }},
	{"site", "domain", func(c *SystemConfig) string { return c.Domain }, func(c *SystemConfig, v string) { c.Domain = v }},
	{"auth", "login_user", func(c *SystemConfig) string { return c.LoginUser }, func(c *SystemConfig, v string) { c.LoginUser = v }},
	{"auth", "login_password", func(c *SystemConfig) string { return c.LoginPassword }, func(c *SystemConfig, v string) { c.LoginPassword = v }},
	{"database", "host", func(c *SystemConfig) string { return c.DBHost }, func(c *SystemConfig, v string) { c.DBHost = v }},
	{"database", "port", func(c *SystemConfig) string { return cast.ToString(c.DBPort) }, func(c *SystemConfig, v string) {
		if port, err := cast.ToIntE(v); err == nil {
			c.DBPort = port
		}
	}},
	{"database", "name", func(c *SystemConfig) string { return c.DBName }, func(c *SystemConfig, v string) { c.DBName = v }},
	{"database", "user", func(c *SystemConfig) string { return c.DBUser }, func(c *SystemConfig, v string) { c.DBUser = v }},
	{"database", "password", func(c *SystemConfig) string { return c.DBPassword }, func(c *SystemConfig, v string) { c.DBPassword = v }},
	{"database", "root_password", func(c *SystemConfig) string { return c.RootPassword }, func(c *SystemConfig, v string) { c.RootPassword = v }},
}

// SystemConfigService 系统配置服务
// 读写 system_settings 与 integration_configs，保存后回写配置文件、安装状态和预置数据
type SystemConfigService struct {
	db          *gorm.DB
	cache       *utils.Cache
	configStore *store.ConfigStore
	stateStore  *store.InstallStateStore
	fixtures    *seed.FixtureStore
	backendPort int
	log         *zap.Logger
}

// NewSystemConfigService 创建系统配置服务
func NewSystemConfigService(db *gorm.DB, cache *utils.Cache, configStore *store.ConfigStore, stateStore *store.InstallStateStore,
	fixtures *seed.FixtureStore, backendPort int, log *zap.Logger) *SystemConfigService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SystemConfigService{
		db:          db,
		cache:       cache,
		configStore: configStore,
		stateStore:  stateStore,
		fixtures:    fixtures,
		backendPort: backendPort,
		log:         log,
	}
}

// GetConfig 读取系统配置，缓存 1 小时
func (s *SystemConfigService) GetConfig(ctx context.Context) (*SystemConfig, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	var cached SystemConfig
	if err := s.cache.Get(ctx, systemConfigCacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("读取系统配置缓存失败", zap.Error(err))
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, systemConfigCacheKey, cfg, systemConfigCacheTTL); err != nil {
		s.log.Warn("写入系统配置缓存失败", zap.Error(err))
	}
	return cfg, nil
}

// baseConfig 数据库未写入的字段取预置数据快照 system_config.json，快照缺失时取默认值
func (s *SystemConfigService) baseConfig() SystemConfig {
	cfg := DefaultSystemConfig()
	if s.fixtures == nil {
		return cfg
	}
	snapshot := s.fixtures.LoadSeedConfig(toSeedConfig(&cfg))
	cfg.ServerIP = snapshot.ServerIP
	cfg.Domain = snapshot.Domain
	cfg.LoginUser = snapshot.LoginUser
	cfg.LoginPassword = snapshot.LoginPassword
	cfg.DBHost = snapshot.DBHost
	cfg.DBPort = snapshot.DBPort
	cfg.DBName = snapshot.DBName
	cfg.DBUser = snapshot.DBUser
	cfg.DBPassword = snapshot.DBPassword
	cfg.RootPassword = snapshot.RootPassword
	return cfg
}

func toSeedConfig(cfg *SystemConfig) seed.SeedConfig {
	return seed.SeedConfig{
		ServerIP:      cfg.ServerIP,
		Domain:        cfg.Domain,
		LoginUser:     cfg.LoginUser,
		LoginPassword: cfg.LoginPassword,
		DBHost:        cfg.DBHost,
		DBPort:        cfg.DBPort,
		DBName:        cfg.DBName,
		DBUser:        cfg.DBUser,
		DBPassword:    cfg.DBPassword,
		RootPassword:  cfg.RootPassword,
	}
}

func (s *SystemConfigService) load(ctx context.Context) (*SystemConfig, error) {
	cfg := s.baseConfig()
	db := s.db.WithContext(ctx)

	var rows []models.SystemSetting
	if err := db.Where("category IN ?", []string{"site", "auth", "database"}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("读取系统设置失败: %w", err)
	}
	stored := make(map[string]string, len(rows))
	for _, row := range rows {
		stored[row.Category+"."+row.Key] = row.Value
	}
	for _, f := range settingFields {
		if v, ok := stored[f.category+"."+f.key]; ok {
			f.set(&cfg, v)
		}
	}

	var integrations []models.IntegrationConfig
	if err := db.Where("provider IN ?", []string{models.ProviderWechatPay, models.ProviderSMS}).Find(&integrations).Error; err != nil {
		return nil, fmt.Errorf("读取集成配置失败: %w", err)
	}
	for _, ic := range integrations {
		switch ic.Provider {
		case models.ProviderWechatPay:
			cfg.WechatAppID = configValue(ic.Config, models.IntegrationKeyAppID)
			cfg.WechatMchID = configValue(ic.Config, models.IntegrationKeyMchID)
			cfg.WechatAPIKey = configValue(ic.Config, models.IntegrationKeyAPIKey)
		case models.ProviderSMS:
			cfg.SMSProvider = configValue(ic.Config, models.IntegrationKeyProvider)
			cfg.SMSAPIKey = configValue(ic.Config, models.IntegrationKeyAPIKey)
			cfg.SMSSignName = configValue(ic.Config, models.IntegrationKeySignName)
		}
	}
	return &cfg, nil
}

func configValue(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s := cast.ToString(v)
	return &s
}

// SaveConfig 保存系统配置并返回保存后的结果，空值字段保持原值
func (s *SystemConfigService) SaveConfig(ctx context.Context, cfg *SystemConfig) (*SystemConfig, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range settingFields {
			value := f.get(cfg)
			if value == "" {
				continue
			}
			row := models.SystemSetting{Category: f.category, Key: f.key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "category"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		wechat := map[string]*string{
			models.IntegrationKeyAppID:  cfg.WechatAppID,
			models.IntegrationKeyMchID:  cfg.WechatMchID,
			models.IntegrationKeyAPIKey: cfg.WechatAPIKey,
		}
		if err := saveIntegration(tx, models.ProviderWechatPay, "微信支付", wechat,
			models.IntegrationKeyAppID, models.IntegrationKeyMchID); err != nil {
			return err
		}
		sms := map[string]*string{
			models.IntegrationKeyProvider: cfg.SMSProvider,
			models.IntegrationKeyAPIKey:   cfg.SMSAPIKey,
			models.IntegrationKeySignName: cfg.SMSSignName,
		}
		return saveIntegration(tx, models.ProviderSMS, "短信服务", sms, models.IntegrationKeyProvider)
	})
	if err != nil {
		return nil, fmt.Errorf("保存系统配置失败: %w", err)
	}

	if err := s.cache.Delete(ctx, systemConfigCacheKey); err != nil {
		s.log.Warn("清除系统配置缓存失败", zap.Error(err))
	}
	s.writeBack(cfg)
	return s.GetConfig(ctx)
}

// saveIntegration 合并提交的字段，required 全部非空时启用；未提交任何字段时不变
func saveIntegration(tx *gorm.DB, provider, label string, values map[string]*string, required ...string) error {
	submitted := false
	for _, v := range values {
		if v != nil {
			submitted = true
			break
		}
	}
	if !submitted {
		return nil
	}

	var ic models.IntegrationConfig
	err := tx.Where("provider = ?", provider).First(&ic).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if ic.Config == nil {
		ic.Config = map[string]interface{}{}
	}
	for k, v := range values {
		if v != nil {
			ic.Config[k] = *v
		}
	}
	ic.IsActive = true
	for _, k := range required {
		if cast.ToString(ic.Config[k]) == "" {
			ic.IsActive = false
		}
	}
	if ic.ID == 0 {
		ic.Provider = provider
		ic.Label = label
		return tx.Create(&ic).Error
	}
	return tx.Save(&ic).Error
}

// writeBack 回写配置文件、安装状态与预置数据，失败只记录日志
func (s *SystemConfigService) writeBack(cfg *SystemConfig) {
	dbSection := map[string]interface{}{
		"host":     cfg.DBHost,
		"port":     cfg.DBPort,
		"name":     cfg.DBName,
		"user":     cfg.DBUser,
		"password": cfg.DBPassword,
	}
	site := map[string]interface{}{
		"ip":           cfg.ServerIP,
		"domain":       cfg.Domain,
		"backend_port": s.backendPort,
	}

	if s.configStore != nil {
		if _, err := s.configStore.MergeUpdates(store.Document{"database": dbSection, "site": site}); err != nil {
			s.log.Warn("回写配置文件失败", zap.String("path", s.configStore.Path()), zap.Error(err))
		}
	}
	if s.stateStore != nil {
		if _, err := s.stateStore.Update(store.Document{"database": dbSection, "site": site}); err != nil {
			s.log.Warn("回写安装状态失败", zap.String("path", s.stateStore.Path()), zap.Error(err))
		}
	}
	if s.fixtures != nil {
		if err := s.fixtures.PersistSeedConfig(toSeedConfig(cfg), s.backendPort); err != nil {
			s.log.Warn("回写预置数据失败", zap.String("dir", s.fixtures.Dir()), zap.Error(err))
		}
	}
}
