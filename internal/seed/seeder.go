package seed

import (
	"context"
	"fmt"

	"github.com/enteacher-core/internal/models"
	"github.com/enteacher-core/internal/store"
	"github.com/enteacher-core/internal/utils"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WechatCredentials 微信支付商户信息
type WechatCredentials struct {
	AppID  string `json:"app_id"`
	MchID  string `json:"mch_id"`
	APIKey string `json:"api_key"`
}

// SMSCredentials 短信服务信息
type SMSCredentials struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	SignName string `json:"sign_name"`
}

// Integrations 写入集成配置时覆盖的密钥
type Integrations struct {
	Wechat WechatCredentials
	SMS    SMSCredentials
}

// Options 预置数据写入选项
type Options struct {
	Admin store.AdminCredentials
	// SettingsOverrides 按 key 覆盖 system_settings.json 中的值，如 domain/ip/backend_port
	SettingsOverrides map[string]string
	Integrations      Integrations
	OverwriteExisting bool
}

// Counts 单个分类的写入统计
type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

func (c *Counts) add(o Outcome) {
	switch o {
	case Inserted:
		c.Inserted++
	case Updated:
		c.Updated++
	default:
		c.Skipped++
	}
}

// Report 各分类的写入统计
type Report map[string]Counts

// Seeder 预置数据写入器
type Seeder struct {
	fixtures *FixtureStore
	log      *zap.Logger
}

// NewSeeder 创建写入器
func NewSeeder(fixtures *FixtureStore, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{fixtures: fixtures, log: log}
}

// Fixtures 预置数据存储
func (s *Seeder) Fixtures() *FixtureStore {
	return s.fixtures
}

type category struct {
	name string
	run  func(tx *gorm.DB, opts Options, c *Counts) error
}

// SeedAll 依次写入全部分类，每个分类一个事务
// 按自然键判重，重复执行不会产生重复行
func (s *Seeder) SeedAll(ctx context.Context, db *gorm.DB, opts Options) (Report, error) {
	categories := []category{
		{"products", s.seedProducts},
		{"users", s.seedUsers},
		{"admin_users", s.seedAdminUsers},
		{"system_settings", s.seedSettings},
		{"integrations", s.seedIntegrations},
		{"membership_settings", s.seedMembership},
		{"recharge_records", s.seedRechargeRecords},
		{"dashboard_stats", s.seedDashboardStats},
		{"admin_orders", s.seedAdminOrders},
		{"courses", s.seedCourses},
	}

	report := Report{}
	for _, cat := range categories {
		var counts Counts
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return cat.run(tx, opts, &counts)
		})
		if err != nil {
			return report, fmt.Errorf("写入 %s 失败: %w", cat.name, err)
		}
		report[cat.name] = counts
		s.log.Debug("预置数据写入完成", zap.String("category", cat.name),
			zap.Int("inserted", counts.Inserted), zap.Int("updated", counts.Updated), zap.Int("skipped", counts.Skipped))
	}
	return report, nil
}

func (s *Seeder) seedProducts(tx *gorm.DB, opts Options, c *Counts) error {
	var items []struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}
	if err := s.fixtures.Read(ProductsFile, &items); err != nil {
		return err
	}
	for _, item := range items {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"name": item.Name},
			func() *models.Product { return &models.Product{Name: item.Name} },
			func(p *models.Product) {
				p.Description = item.Description
				p.Price = item.Price
				p.Stock = item.Stock
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

type userSeed struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

func (s *Seeder) seedUsers(tx *gorm.DB, opts Options, c *Counts) error {
	var items []userSeed
	if err := s.fixtures.Read(UsersFile, &items); err != nil {
		return err
	}
	if opts.Admin.Username != "" {
		items = append(items, userSeed{Username: opts.Admin.Username, Password: opts.Admin.Password, Role: models.RoleAdmin})
	}

	for _, item := range items {
		item := item
		if item.Role == "" {
			item.Role = models.RoleUser
		}
		var hashErr error
		o, _, err := upsert(tx, map[string]interface{}{"username": item.Username},
			func() *models.User { return &models.User{Username: item.Username} },
			func(u *models.User) {
				u.Role = item.Role
				if item.Phone != "" {
					phone := item.Phone
					u.Phone = &phone
				}
				if utils.CheckPassword(u.PasswordHash, item.Password) {
					return
				}
				u.PasswordHash, hashErr = utils.HashPassword(item.Password)
			}, opts.OverwriteExisting)
		if hashErr != nil {
			return hashErr
		}
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedAdminUsers(tx *gorm.DB, opts Options, c *Counts) error {
	profiles, err := s.fixtures.AdminUsers()
	if err != nil {
		return err
	}
	for _, item := range profiles {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"phone": item.Phone},
			func() *models.AdminUserProfile {
				return &models.AdminUserProfile{ID: item.ID, Phone: item.Phone}
			},
			func(p *models.AdminUserProfile) {
				p.Nickname = item.Nickname
				p.Level = item.Level
				p.RegisterAt = item.RegisterAt
				p.Spend = item.Spend
				p.Tests = item.Tests
				p.Benefits = item.Benefits
				p.Recharges = item.Recharges
				p.Note = item.Note
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedSettings(tx *gorm.DB, opts Options, c *Counts) error {
	var entries []settingEntry
	if err := s.fixtures.Read(SystemSettingsFile, &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		entry := entry
		value := cast.ToString(entry.Value)
		if override, ok := opts.SettingsOverrides[entry.Key]; ok {
			value = override
		}
		o, _, err := upsert(tx, map[string]interface{}{"category": entry.Category, "key": entry.Key},
			func() *models.SystemSetting {
				return &models.SystemSetting{Category: entry.Category, Key: entry.Key, Description: entry.Description}
			},
			func(m *models.SystemSetting) { m.Value = value },
			opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedIntegrations(tx *gorm.DB, opts Options, c *Counts) error {
	var entries []struct {
		Provider string                 `json:"provider"`
		Label    string                 `json:"label"`
		IsActive *bool                  `json:"is_active"`
		Config   map[string]interface{} `json:"config"`
	}
	if err := s.fixtures.Read(IntegrationsFile, &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		entry := entry
		cfg := entry.Config
		if cfg == nil {
			cfg = map[string]interface{}{}
		}
		active := entry.IsActive == nil || *entry.IsActive
		label := entry.Label
		if label == "" {
			label = entry.Provider
		}

		switch entry.Provider {
		case models.ProviderWechatPay:
			w := opts.Integrations.Wechat
			cfg[models.IntegrationKeyAppID] = w.AppID
			cfg[models.IntegrationKeyMchID] = w.MchID
			cfg[models.IntegrationKeyAPIKey] = w.APIKey
			active = w.AppID != "" && w.MchID != ""
		case models.ProviderSMS:
			sms := opts.Integrations.SMS
			cfg[models.IntegrationKeyProvider] = sms.Provider
			cfg[models.IntegrationKeyAPIKey] = sms.APIKey
			cfg[models.IntegrationKeySignName] = sms.SignName
			active = sms.Provider != ""
		}

		o, _, err := upsert(tx, map[string]interface{}{"provider": entry.Provider},
			func() *models.IntegrationConfig { return &models.IntegrationConfig{Provider: entry.Provider} },
			func(m *models.IntegrationConfig) {
				m.Label = label
				m.IsActive = active
				m.Config = datatypes.JSONMap(cfg)
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedMembership(tx *gorm.DB, opts Options, c *Counts) error {
	var items []struct {
		Level        string  `json:"level"`
		Price        float64 `json:"price"`
		DurationDays int     `json:"duration_days"`
		Description  string  `json:"description"`
	}
	if err := s.fixtures.Read(MembershipSettingsFile, &items); err != nil {
		return err
	}
	for _, item := range items {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"level": item.Level},
			func() *models.MembershipSetting { return &models.MembershipSetting{Level: item.Level} },
			func(m *models.MembershipSetting) {
				m.Price = item.Price
				m.DurationDays = item.DurationDays
				m.Description = item.Description
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedRechargeRecords(tx *gorm.DB, opts Options, c *Counts) error {
	records, err := s.fixtures.RechargeRecords()
	if err != nil {
		return err
	}
	for _, item := range records {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"order_no": item.OrderNo},
			func() *models.RechargeRecord { return &models.RechargeRecord{OrderNo: item.OrderNo} },
			func(r *models.RechargeRecord) {
				r.UserDisplay = item.UserDisplay
				r.Level = item.Level
				r.Amount = item.Amount
				r.Channel = item.Channel
				r.PaidAt = item.PaidAt
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedDashboardStats(tx *gorm.DB, opts Options, c *Counts) error {
	stats, err := s.fixtures.DashboardStats()
	if err != nil {
		return err
	}
	for _, item := range stats {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"label": item.Label},
			func() *models.AdminDashboardStat { return &models.AdminDashboardStat{Label: item.Label} },
			func(m *models.AdminDashboardStat) {
				m.Value = item.Value
				m.Note = item.Note
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
	}
	return nil
}

func (s *Seeder) seedAdminOrders(tx *gorm.DB, opts Options, c *Counts) error {
	var items []struct {
		ID        string  `json:"id"`
		User      string  `json:"user"`
		CreatedAt string  `json:"createdAt"`
		Status    string  `json:"status"`
		Channel   string  `json:"channel"`
		Amount    float64 `json:"amount"`
		Remark    string  `json:"remark"`
		Items     []struct {
			Name     string  `json:"name"`
			Quantity int     `json:"quantity"`
			Price    float64 `json:"price"`
		} `json:"items"`
	}
	if err := s.fixtures.Read(AdminOrdersFile, &items); err != nil {
		return err
	}
	for _, item := range items {
		item := item
		createdAt, err := parseFixtureTime(item.CreatedAt)
		if err != nil {
			return err
		}
		o, _, err := upsert(tx, map[string]interface{}{"id": item.ID},
			func() *models.AdminOrder { return &models.AdminOrder{ID: item.ID} },
			func(m *models.AdminOrder) {
				m.User = item.User
				m.CreatedAt = createdAt
				m.Status = item.Status
				m.Channel = item.Channel
				m.Amount = item.Amount
				m.Remark = item.Remark
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
		if o == Skipped {
			continue
		}

		children := make([]models.AdminOrderItem, 0, len(item.Items))
		for _, child := range item.Items {
			qty := child.Quantity
			if qty == 0 {
				qty = 1
			}
			children = append(children, models.AdminOrderItem{OrderID: item.ID, Name: child.Name, Quantity: qty, Price: child.Price})
		}
		if err := replaceChildren(tx, &models.AdminOrderItem{}, "order_id", item.ID, children); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedCourses(tx *gorm.DB, opts Options, c *Counts) error {
	var items []struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Tag      string `json:"tag"`
		Image    string `json:"image"`
		Lessons  []struct {
			Zh       string `json:"zh"`
			En       string `json:"en"`
			Phonetic string `json:"phonetic"`
			Audio    string `json:"audio"`
		} `json:"lessons"`
	}
	if err := s.fixtures.Read(CoursesFile, &items); err != nil {
		return err
	}
	for _, item := range items {
		item := item
		o, _, err := upsert(tx, map[string]interface{}{"id": item.ID},
			func() *models.Course { return &models.Course{ID: item.ID} },
			func(m *models.Course) {
				m.Title = item.Title
				m.Subtitle = item.Subtitle
				m.Tag = item.Tag
				m.Image = item.Image
			}, opts.OverwriteExisting)
		if err != nil {
			return err
		}
		c.add(o)
		if o == Skipped {
			continue
		}

		lessons := make([]models.CourseLesson, 0, len(item.Lessons))
		for _, l := range item.Lessons {
			lessons = append(lessons, models.CourseLesson{CourseID: item.ID, Zh: l.Zh, En: l.En, Phonetic: l.Phonetic, Audio: l.Audio})
		}
		if err := replaceChildren(tx, &models.CourseLesson{}, "course_id", item.ID, lessons); err != nil {
			return err
		}
	}
	return nil
}

// replaceChildren 删除父行下的全部子行后重新插入
func replaceChildren[C any](tx *gorm.DB, model *C, column string, parentID interface{}, rows []C) error {
	if err := tx.Where(column+" = ?", parentID).Delete(model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
