package service

import (
	"context"
	"testing"

	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type configFixture struct {
	svc         *SystemConfigService
	configStore *store.ConfigStore
	stateStore  *store.InstallStateStore
	fixtures    *seed.FixtureStore
}

func newConfigFixture(t *testing.T, db *gorm.DB) *configFixture {
	t.Helper()
	stateDir := t.TempDir()
	f := &configFixture{
		configStore: store.NewConfigStore(stateDir, nil),
		stateStore:  store.NewInstallStateStore(stateDir, nil),
		fixtures:    seed.NewFixtureStore(t.TempDir(), nil),
	}
	f.svc = NewSystemConfigService(db, utils.NewCache(nil), f.configStore, f.stateStore, f.fixtures, 8001, nil)
	return f
}

func strPtr(s string) *string { return &s }

func TestSystemConfigService_Defaults(t *testing.T) {
	f := newConfigFixture(t, setupTestDB(t))

	cfg, err := f.svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemConfig(), *cfg)
}

func TestSystemConfigService_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	f := newConfigFixture(t, db)
	ctx := context.Background()

	in := DefaultSystemConfig()
	in.ServerIP = "192.168.1.20"
	in.Domain = "shop.example.com"
	in.DBHost = "db.internal"
	in.DBPort = 3307
	in.DBName = "shop"
	in.DBUser = "shop_user"
	in.DBPassword = "shop_pass"
	in.WechatAppID = strPtr("wx123")
	in.WechatMchID = strPtr("mch456")
	in.SMSAPIKey = strPtr("sms-key")

	out, err := f.svc.SaveConfig(ctx, &in)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", out.ServerIP)
	assert.Equal(t, 3307, out.DBPort)
	require.NotNil(t, out.WechatAppID)
	assert.Equal(t, "wx123", *out.WechatAppID)
	assert.Nil(t, out.WechatAPIKey)

	var wechat models.IntegrationConfig
	require.NoError(t, db.Where("provider = ?", models.ProviderWechatPay).First(&wechat).Error)
	assert.True(t, wechat.IsActive)

	var sms models.IntegrationConfig
	require.NoError(t, db.Where("provider = ?", models.ProviderSMS).First(&sms).Error)
	assert.False(t, sms.IsActive, "未配置短信提供方时不启用")

	// 再次保存只覆盖值，不产生重复行
	_, err = f.svc.SaveConfig(ctx, &in)
	require.NoError(t, err)
	var n int64
	require.NoError(t, db.Model(&models.SystemSetting{}).Where(&models.SystemSetting{Category: "site", Key: "ip"}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	doc := f.configStore.Load()
	host, _ := doc.Lookup("database.host")
	assert.Equal(t, "db.internal", host)
	port, _ := doc.Lookup("database.port")
	assert.Equal(t, "3307", port)
	domain, _ := doc.Lookup("site.domain")
	assert.Equal(t, "shop.example.com", domain)

	name, _ := f.stateStore.Load().Lookup("config.database.name")
	assert.Equal(t, "shop", name)

	snapshot := f.fixtures.LoadSeedConfig(seed.SeedConfig{})
	assert.Equal(t, "shop.example.com", snapshot.Domain)
	assert.Equal(t, "shop_user", snapshot.DBUser)
	assert.Equal(t, 3307, snapshot.DBPort)
}

func TestSystemConfigService_BlankPasswordKeepsStoredValue(t *testing.T) {
	f := newConfigFixture(t, setupTestDB(t))
	ctx := context.Background()

	in := DefaultSystemConfig()
	in.LoginPassword = "first"
	_, err := f.svc.SaveConfig(ctx, &in)
	require.NoError(t, err)

	in.LoginPassword = ""
	out, err := f.svc.SaveConfig(ctx, &in)
	require.NoError(t, err)
	assert.Equal(t, "first", out.LoginPassword)
}

func TestSystemConfigService_DatabaseUnavailable(t *testing.T) {
	f := newConfigFixture(t, nil)
	_, err := f.svc.GetConfig(context.Background())
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)

	in := DefaultSystemConfig()
	_, err = f.svc.SaveConfig(context.Background(), &in)
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)
}

func TestSystemConfigService_SeededIntegrationsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	f := newConfigFixture(t, db)
	ctx := context.Background()

	_, err := seed.NewSeeder(f.fixtures, nil).SeedAll(ctx, db, seed.Options{
		Integrations: seed.Integrations{
			Wechat: seed.WechatCredentials{AppID: "wx123", MchID: "m456"},
			SMS:    seed.SMSCredentials{Provider: "aliyun", SignName: "英语学习"},
		},
	})
	require.NoError(t, err)

	cfg, err := f.svc.GetConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg.WechatAppID)
	assert.Equal(t, "wx123", *cfg.WechatAppID)
	require.NotNil(t, cfg.WechatMchID)
	assert.Equal(t, "m456", *cfg.WechatMchID)
	require.NotNil(t, cfg.SMSProvider)
	assert.Equal(t, "aliyun", *cfg.SMSProvider)
	require.NotNil(t, cfg.SMSSignName)
	assert.Equal(t, "英语学习", *cfg.SMSSignName)

	// 只提交密钥，已有的 appId/mchId 保留，集成仍为启用状态
	in := *cfg
	in.WechatAppID = nil
	in.WechatMchID = nil
	in.WechatAPIKey = strPtr("new-key")
	out, err := f.svc.SaveConfig(ctx, &in)
	require.NoError(t, err)
	require.NotNil(t, out.WechatAppID)
	assert.Equal(t, "wx123", *out.WechatAppID)
	require.NotNil(t, out.WechatAPIKey)
	assert.Equal(t, "new-key", *out.WechatAPIKey)

	var wechat models.IntegrationConfig
	require.NoError(t, db.Where("provider = ?", models.ProviderWechatPay).First(&wechat).Error)
	assert.True(t, wechat.IsActive)
	assert.Equal(t, "new-key", wechat.Config[models.IntegrationKeyAPIKey])
	assert.NotContains(t, wechat.Config, "app_id")
	assert.NotContains(t, wechat.Config, "api_key")

	var n int64
	require.NoError(t, db.Model(&models.IntegrationConfig{}).Where("provider = ?", models.ProviderWechatPay).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSystemConfigService_DefaultsFromSeedSnapshot(t *testing.T) {
	f := newConfigFixture(t, setupTestDB(t))
	require.NoError(t, f.fixtures.PersistSeedConfig(seed.SeedConfig{
		ServerIP: "172.16.0.9",
		Domain:   "snapshot.example.com",
		DBHost:   "db.snapshot",
		DBPort:   3308,
	}, 8001))

	cfg, err := f.svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.9", cfg.ServerIP)
	assert.Equal(t, "snapshot.example.com", cfg.Domain)
	assert.Equal(t, "db.snapshot", cfg.DBHost)
	assert.Equal(t, 3308, cfg.DBPort)
}

func TestIntegrationConfig_ProviderUnique(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.IntegrationConfig{Provider: models.ProviderSMS, Label: "短信服务"}).Error)
	err := db.Create(&models.IntegrationConfig{Provider: models.ProviderSMS, Label: "短信服务"}).Error
	assert.Error(t, err)
}
