package service

import (
	"context"
	"errors"

	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/seed"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminDataService 后台看板数据
// 统计卡片、用户档案、充值记录在数据库为空或不可用时回退到预置数据
type AdminDataService struct {
	db       *gorm.DB
	fixtures *seed.FixtureStore
	log      *zap.Logger
}

// NewAdminDataService 创建后台数据服务
func NewAdminDataService(db *gorm.DB, fixtures *seed.FixtureStore, log *zap.Logger) *AdminDataService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminDataService{db: db, fixtures: fixtures, log: log}
}

// listOrFallback 查询数据库，无数据或出错时使用 fallback
func listOrFallback[T any](s *AdminDataService, name string, query func(db *gorm.DB, dest *[]T) error, fallback func() ([]T, error)) []T {
	var rows []T
	if s.db != nil {
		err := query(s.db, &rows)
		if err == nil && len(rows) > 0 {
			return rows
		}
		if err != nil {
			s.log.Warn("查询后台数据失败，使用预置数据", zap.String("data", name), zap.Error(err))
		}
	}
	items, err := fallback()
	if err != nil {
		s.log.Warn("读取预置数据失败", zap.String("data", name), zap.Error(err))
		return []T{}
	}
	return items
}

// DashboardStats 首页统计卡片
func (s *AdminDataService) DashboardStats(ctx context.Context) []models.AdminDashboardStat {
	return listOrFallback(s, "dashboard_stats", func(db *gorm.DB, dest *[]models.AdminDashboardStat) error {
		return db.WithContext(ctx).Order("id ASC").Find(dest).Error
	}, s.fixtures.DashboardStats)
}

// Users 用户档案，按注册时间倒序
func (s *AdminDataService) Users(ctx context.Context) []models.AdminUserProfile {
	return listOrFallback(s, "admin_users", func(db *gorm.DB, dest *[]models.AdminUserProfile) error {
		return db.WithContext(ctx).Order("register_at DESC").Find(dest).Error
	}, s.fixtures.AdminUsers)
}

// RechargeRecords 充值记录，按支付时间倒序
func (s *AdminDataService) RechargeRecords(ctx context.Context) []models.RechargeRecord {
	return listOrFallback(s, "recharge_records", func(db *gorm.DB, dest *[]models.RechargeRecord) error {
		return db.WithContext(ctx).Order("paid_at DESC").Find(dest).Error
	}, s.fixtures.RechargeRecords)
}

// Orders 后台订单列表，按下单时间倒序；数据库不可用时为空
func (s *AdminDataService) Orders(ctx context.Context) []models.AdminOrder {
	orders := []models.AdminOrder{}
	if s.db == nil {
		return orders
	}
	if err := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		s.log.Warn("查询后台订单失败", zap.Error(err))
		return []models.AdminOrder{}
	}
	return orders
}

// Order 后台订单详情
func (s *AdminDataService) Order(ctx context.Context, id string) (*models.AdminOrder, error) {
	if s.db == nil {
		return nil, ErrAdminOrderMissing
	}
	var order models.AdminOrder
	err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		s.log.Warn("查询后台订单详情失败", zap.String("id", id), zap.Error(err))
		return nil, ErrAdminOrderMissing
	}
	return &order, nil
}
