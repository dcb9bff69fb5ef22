package seed

import (
	"github.com/enteacher-core/internal/models"
	"gorm.io/datatypes"
)

// DashboardStats 读取统计卡片预置数据
func (s *FixtureStore) DashboardStats() ([]models.AdminDashboardStat, error) {
	var items []struct {
		Label string `json:"label"`
		Value string `json:"value"`
		Note  string `json:"note"`
	}
	if err := s.Read(DashboardStatsFile, &items); err != nil {
		return nil, err
	}
	stats := make([]models.AdminDashboardStat, 0, len(items))
	for _, item := range items {
		stats = append(stats, models.AdminDashboardStat{Label: item.Label, Value: item.Value, Note: item.Note})
	}
	return stats, nil
}

// AdminUsers 读取后台用户档案预置数据
func (s *FixtureStore) AdminUsers() ([]models.AdminUserProfile, error) {
	var items []struct {
		ID         int64    `json:"id"`
		Nickname   string   `json:"nickname"`
		Phone      string   `json:"phone"`
		Level      string   `json:"level"`
		RegisterAt string   `json:"registerAt"`
		Spend      float64  `json:"spend"`
		Tests      int      `json:"tests"`
		Benefits   string   `json:"benefits"`
		Recharges  []string `json:"recharges"`
		Note       string   `json:"note"`
	}
	if err := s.Read(AdminUsersFile, &items); err != nil {
		return nil, err
	}
	profiles := make([]models.AdminUserProfile, 0, len(items))
	for _, item := range items {
		registerAt, err := parseFixtureTime(item.RegisterAt)
		if err != nil {
			return nil, err
		}
		recharges := item.Recharges
		if recharges == nil {
			recharges = []string{}
		}
		profiles = append(profiles, models.AdminUserProfile{
			ID:         item.ID,
			Nickname:   item.Nickname,
			Phone:      item.Phone,
			Level:      item.Level,
			RegisterAt: registerAt,
			Spend:      item.Spend,
			Tests:      item.Tests,
			Benefits:   item.Benefits,
			Recharges:  datatypes.JSONSlice[string](recharges),
			Note:       item.Note,
		})
	}
	return profiles, nil
}

// RechargeRecords 读取充值记录预置数据（admin_payments.json）
func (s *FixtureStore) RechargeRecords() ([]models.RechargeRecord, error) {
	var items []struct {
		Time    string  `json:"time"`
		User    string  `json:"user"`
		Level   string  `json:"level"`
		Amount  float64 `json:"amount"`
		Channel string  `json:"channel"`
		OrderNo string  `json:"orderNo"`
	}
	if err := s.Read(AdminPaymentsFile, &items); err != nil {
		return nil, err
	}
	records := make([]models.RechargeRecord, 0, len(items))
	for _, item := range items {
		paidAt, err := parseFixtureTime(item.Time)
		if err != nil {
			return nil, err
		}
		records = append(records, models.RechargeRecord{
			UserDisplay: item.User,
			Level:       item.Level,
			Amount:      item.Amount,
			Channel:     item.Channel,
			OrderNo:     item.OrderNo,
			PaidAt:      paidAt,
		})
	}
	return records, nil
}
