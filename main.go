// @title           英语学习平台核心 API
// @version         1.0
// @description     安装向导、账号认证、课程商品、订单支付与管理后台接口

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes   http https
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enteacher-core/config"
	"github.com/enteacher-core/internal/database"
	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/logger"
	"github.com/enteacher-core/internal/router"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/service"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 加载配置
	// 支持命令行参数: ./app config/config.prod.yaml 或 ./app prod
	configPath := ""
	if len(os.Args) > 1 {
		arg := os.Args[1]
		switch {
		case arg == "prod" || arg == "production":
			configPath = "config/config.prod.yaml"
		case arg == "test" || arg == "testing":
			configPath = "config/config.test.yaml"
		case arg == "dev" || arg == "development":
			configPath = "config/config.yaml"
		case len(arg) > 0 && arg[0] != '-':
			configPath = arg
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		panic(fmt.Sprintf("初始化日志失败: %v", err))
	}
	defer logger.Sync()
	log := logger.Logger

	configStore := store.NewConfigStore(cfg.Paths.StateDir, log)
	stateStore := store.NewInstallStateStore(cfg.Paths.StateDir, log)
	fixtures := seed.NewFixtureStore(cfg.Paths.SeedDir, log)
	seeder := seed.NewSeeder(fixtures, log)

	// 解析业务配置，数据库配置缺失时以安装模式启动
	settings, err := config.ResolveStores(configStore, stateStore)
	var cfgErr *config.ConfigError
	if err != nil && !errors.As(err, &cfgErr) {
		log.Fatal("解析业务配置失败", zap.Error(err))
	}
	if cfgErr != nil {
		log.Warn("数据库未配置，以安装模式启动", zap.String("reason", cfgErr.Error()))
	}
	log.Info("业务配置已解析", zap.Any("sources", settings.Sources()))

	var db *gorm.DB
	if settings.DatabaseConfigured() {
		db, err = database.Open(settings, cfg.Database)
		if err != nil {
			// 数据库不可用时依赖数据库的接口返回 503，安装向导与兜底管理员仍可用
			log.Error("连接数据库失败", zap.Error(err))
			db = nil
		} else {
			log.Info("数据库连接成功", zap.String("host", settings.Database.Host), zap.String("name", settings.Database.Name))
			defer database.Close(db)
		}
	}

	// Redis 不是必须的，不可用时缓存与验证码退回进程内
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Warn("初始化 Redis 失败", zap.Error(err))
	}
	defer database.CloseRedis(rdb)
	cache := utils.NewCache(rdb)

	inst := installer.New(configStore, stateStore, seeder, log)
	systemConfig := service.NewSystemConfigService(db, cache, configStore, stateStore, fixtures, settings.Site.Port, log)
	orders := service.NewOrderService(db)
	deps := &router.Dependencies{
		DB:           db,
		Installer:    inst,
		InstallState: stateStore,
		Auth:         service.NewAuthService(db, settings.JWT, stateStore, service.NewCodeStore(cache), log),
		Products:     service.NewProductService(db),
		Courses:      service.NewCourseService(db),
		Orders:       orders,
		Payments:     service.NewPaymentService(db, orders, settings.WechatPay, log),
		AdminData:    service.NewAdminDataService(db, fixtures, log),
		Database:     service.NewDatabaseService(db, inst, seeder, systemConfig, settings.Site.Port, log),
		SystemConfig: systemConfig,
		Log:          log,
	}

	// 设置路由
	r := router.SetupRouter(cfg, settings.CORSOrigins, deps)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", settings.Site.Port),
		Handler:        r,
		ReadTimeout:    cfg.App.ReadTimeout,
		WriteTimeout:   cfg.App.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// 启动服务器（在 goroutine 中）
	go func() {
		log.Info("服务器启动",
			zap.String("address", srv.Addr),
			zap.String("mode", cfg.App.Mode),
			zap.Bool("installed", stateStore.Installed()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务器强制关闭", zap.Error(err))
	}

	log.Info("服务器已关闭")
}
