package service

import (
	"context"
	"strconv"

	"github.com/enteacher-core/internal/installer"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const seedSyncedMessage = "数据库结构已检查完毕，预置数据同步完成。"

// DatabaseChecker 数据库连通性检测
type DatabaseChecker interface {
	CheckDatabase(ctx context.Context, check installer.DatabaseCheck) installer.DatabaseCheckResult
}

// SeedResult 预置数据同步结果
type SeedResult struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Report  seed.Report `json:"report"`
}

// DatabaseService 后台数据库维护
type DatabaseService struct {
	db          *gorm.DB
	checker     DatabaseChecker
	seeder      *seed.Seeder
	config      *SystemConfigService
	backendPort int
	log         *zap.Logger
}

// NewDatabaseService 创建数据库维护服务
func NewDatabaseService(db *gorm.DB, checker DatabaseChecker, seeder *seed.Seeder, config *SystemConfigService, backendPort int, log *zap.Logger) *DatabaseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DatabaseService{
		db:          db,
		checker:     checker,
		seeder:      seeder,
		config:      config,
		backendPort: backendPort,
		log:         log,
	}
}

// CheckDatabase 检测 root 连接、业务库与业务账号
func (s *DatabaseService) CheckDatabase(ctx context.Context, check installer.DatabaseCheck) installer.DatabaseCheckResult {
	return s.checker.CheckDatabase(ctx, check)
}

// InitializeSeedData 补齐表结构并写入预置数据，已有数据不覆盖
func (s *DatabaseService) InitializeSeedData(ctx context.Context) (*SeedResult, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	cfg, err := s.config.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := seed.CreateSchema(ctx, s.db); err != nil {
		s.log.Error("建表失败", zap.Error(err))
		return nil, ErrSeedFailed
	}

	report, err := s.seeder.SeedAll(ctx, s.db, seed.Options{
		Admin: store.AdminCredentials{Username: cfg.LoginUser, Password: cfg.LoginPassword},
		SettingsOverrides: map[string]string{
			"domain":       cfg.Domain,
			"ip":           cfg.ServerIP,
			"backend_port": strconv.Itoa(s.backendPort),
		},
		OverwriteExisting: false,
	})
	if err != nil {
		s.log.Error("写入预置数据失败", zap.Error(err))
		return nil, ErrSeedFailed
	}
	return &SeedResult{Status: "ok", Message: seedSyncedMessage, Report: report}, nil
}
