package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/service"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	state  *store.InstallStateStore
}

func testConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{Name: "enteacher-core", Version: "test", Mode: gin.TestMode},
		Monitoring: config.MonitoringConfig{MetricsToken: "metrics-secret"},
	}
}

// newTestServer 使用临时 SQLite 组装完整路由，db 为 false 时模拟数据库不可用
func newTestServer(t *testing.T, withDB bool) *testServer {
	t.Helper()

	var db *gorm.DB
	if withDB {
		var err error
		db, err = gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "router.db")), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(models.All()...))
		t.Cleanup(func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
	}

	stateDir := t.TempDir()
	configStore := store.NewConfigStore(stateDir, nil)
	stateStore := store.NewInstallStateStore(stateDir, nil)
	fixtures := seed.NewFixtureStore(t.TempDir(), nil)
	seeder := seed.NewSeeder(fixtures, nil)
	cache := utils.NewCache(nil)
	jwt := config.JWTSettings{Secret: "router-secret", Algorithm: "HS256", Expire: time.Hour}

	inst := installer.New(configStore, stateStore, seeder, nil)
	systemConfig := service.NewSystemConfigService(db, cache, configStore, stateStore, fixtures, 8001, nil)
	orders := service.NewOrderService(db)
	deps := &Dependencies{
		DB:           db,
		Installer:    inst,
		InstallState: stateStore,
		Auth:         service.NewAuthService(db, jwt, stateStore, service.NewMemoryCodeStore(), nil),
		Products:     service.NewProductService(db),
		Courses:      service.NewCourseService(db),
		Orders:       orders,
		Payments:     service.NewPaymentService(db, orders, &config.WechatPaySettings{AppID: "wx-app", MchID: "mch", APIKey: "key"}, nil),
		AdminData:    service.NewAdminDataService(db, fixtures, nil),
		Database:     service.NewDatabaseService(db, inst, seeder, systemConfig, 8001, nil),
		SystemConfig: systemConfig,
	}
	return &testServer{engine: SetupRouter(testConfig(), []string{"*"}, deps), db: db, state: stateStore}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) createAdmin(t *testing.T, username, password string) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	phone := username
	require.NoError(t, s.db.Create(&models.User{
		Username:        username,
		Phone:           &phone,
		PasswordHash:    hash,
		Role:            models.RoleAdmin,
		MembershipLevel: service.DefaultMembership,
	}).Error)
}

func (s *testServer) login(t *testing.T, path, username, password string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, path, map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token service.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	w, _ := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "enteacher-core", body["service"])
}

func TestMetricsRequiresToken(t *testing.T) {
	s := newTestServer(t, false)
	// 数据库不可用，产生一次 503 计数
	w, _ := s.do(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/metrics?token=metrics-secret", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "enteacher_http_requests_total")
	assert.Contains(t, w.Body.String(), "enteacher_http_service_unavailable_total")
}

func TestInstallStatus(t *testing.T) {
	s := newTestServer(t, false)
	w, env := s.do(t, http.MethodGet, "/install/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, false, status["connected"])
	assert.Equal(t, false, status["installed"])
	assert.Equal(t, "尚未连接到数据库，需执行安装向导。", status["message"])

	s = newTestServer(t, true)
	_, env = s.do(t, http.MethodGet, "/install/status", nil, "")
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, true, status["connected"])
	assert.Equal(t, "数据库已连接", status["message"])
}

func TestInstallRunRejectsInvalidRequest(t *testing.T) {
	s := newTestServer(t, false)
	w, _ := s.do(t, http.MethodPost, "/install/run", map[string]string{"server_domain": "example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, true)

	w, env := s.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "13800000000", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, env.Code)

	w, env = s.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "13800000000", "password": "secret"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrCodeUsernameExists, env.Code)

	token := s.login(t, "/auth/login", "13800000000", "secret")

	w, env = s.do(t, http.MethodGet, "/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "13800000000", me.Username)

	w, _ = s.do(t, http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "13800000000", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.ErrCodeBadCredentials, env.Code)
}

func TestCodeLoginFlow(t *testing.T) {
	s := newTestServer(t, true)

	w, env := s.do(t, http.MethodPost, "/auth/send-code", map[string]string{"phone": "13900000000"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var sent map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "验证码已发送", sent["message"])
	require.Len(t, sent["code"], 6)

	w, env = s.do(t, http.MethodPost, "/auth/code-login", map[string]string{"phone": "13900000000", "code": "000000x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrCodeCodeMismatch, env.Code)

	w, env = s.do(t, http.MethodPost, "/auth/code-login", map[string]string{"phone": "13900000000", "code": sent["code"]}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token service.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &token))
	assert.NotEmpty(t, token.AccessToken)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t, true)

	w, env := s.do(t, http.MethodGet, "/admin", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "/admin/dashboard")

	w, _ = s.do(t, http.MethodGet, "/admin/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, _ = s.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "plain", "password": "secret"}, "")
	userToken := s.login(t, "/auth/login", "plain", "secret")
	w, env = s.do(t, http.MethodGet, "/admin/dashboard", nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.ErrCodeForbidden, env.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/admin/login", map[string]string{"username": "plain", "password": "secret"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.createAdmin(t, "boss", "Admin@123")
	adminToken := s.login(t, "/auth/admin/login", "boss", "Admin@123")

	w, env = s.do(t, http.MethodGet, "/admin/dashboard", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []models.AdminDashboardStat
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.NotEmpty(t, stats)

	w, env = s.do(t, http.MethodGet, "/admin/config", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg service.SystemConfig
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "english_db", cfg.DBName)
}

func TestCatalogAndOrderFlow(t *testing.T) {
	s := newTestServer(t, true)
	s.createAdmin(t, "boss", "Admin@123")
	adminToken := s.login(t, "/auth/admin/login", "boss", "Admin@123")

	w, env := s.do(t, http.MethodPost, "/admin/products", map[string]interface{}{
		"name": "Phrasebook", "description": "常用句", "price": 19.9, "stock": 2,
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))

	w, env = s.do(t, http.MethodGet, "/products?q=phrase", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)

	w, _ = s.do(t, http.MethodGet, "/products/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodGet, "/products/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, _ = s.do(t, http.MethodPost, "/auth/register", map[string]string{"username": "buyer", "password": "secret"}, "")
	token := s.login(t, "/auth/login", "buyer", "secret")
	items := map[string]interface{}{"items": []map[string]interface{}{{"product_id": product.ID, "quantity": 2}}}

	w, _ = s.do(t, http.MethodPost, "/orders", items, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPost, "/payments/wechat", items, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var payment service.PaymentResult
	require.NoError(t, json.Unmarshal(env.Data, &payment))
	assert.InDelta(t, 39.8, payment.TotalAmount, 0.001)
	assert.Equal(t, "MD5", payment.PrepayParams.SignType)

	w, env = s.do(t, http.MethodPost, "/orders", items, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrCodeStockInsufficient, env.Code)

	notify := map[string]interface{}{"order_id": payment.OrderID}
	w, env = s.do(t, http.MethodPost, "/payments/wechat/notify", notify, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrCodeSignInvalid, env.Code)

	_, notify["sign"] = utils.WechatSign(notify, "key")
	w, env = s.do(t, http.MethodPost, "/payments/wechat/notify", notify, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"success"}`, string(env.Data))

	w, env = s.do(t, http.MethodGet, "/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "paid", orders[0].Status)

	w, _ = s.do(t, http.MethodDelete, "/admin/products/"+jsonNumber(product.ID), nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDatabaseUnavailable(t *testing.T) {
	s := newTestServer(t, false)

	w, env := s.do(t, http.MethodGet, "/products", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, service.ErrCodeDatabaseUnavailable, env.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "a", "password": "b"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBootstrapAdminCannotUseOrders(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.state.MarkInstalled(store.Snapshot{Admin: store.AdminCredentials{Username: "root", Password: "123456"}}))
	token := s.login(t, "/auth/admin/login", "root", "123456")

	w, env := s.do(t, http.MethodGet, "/orders", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.ErrCodeForbidden, env.Code)

	w, _ = s.do(t, http.MethodGet, "/orders/1", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	items := map[string]interface{}{"items": []map[string]interface{}{{"product_id": 1, "quantity": 1}}}
	w, _ = s.do(t, http.MethodPost, "/orders", items, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodPost, "/payments/wechat", items, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func jsonNumber(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
