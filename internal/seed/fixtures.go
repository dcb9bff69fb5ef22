package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/enteacher-core/internal/store"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// 预置数据文件
const (
	ProductsFile           = "products.json"
	UsersFile              = "users.json"
	SystemSettingsFile     = "system_settings.json"
	IntegrationsFile       = "integrations.json"
	MembershipSettingsFile = "membership_settings.json"
	AdminPaymentsFile      = "admin_payments.json"
	DashboardStatsFile     = "admin_dashboard_stats.json"
	AdminUsersFile         = "admin_users.json"
	AdminOrdersFile        = "admin_orders.json"
	CoursesFile            = "courses.json"
	SystemConfigFile       = "system_config.json"
)

// SeedConfig system_config.json 中的反范式配置快照
type SeedConfig struct {
	ServerIP      string `json:"server_ip"`
	Domain        string `json:"domain"`
	LoginUser     string `json:"login_user"`
	LoginPassword string `json:"login_password"`
	DBHost        string `json:"db_host"`
	DBPort        int    `json:"db_port"`
	DBName        string `json:"db_name"`
	DBUser        string `json:"db_user"`
	DBPassword    string `json:"db_password"`
	RootPassword  string `json:"root_password"`
}

// settingEntry system_settings.json 的一行
type settingEntry struct {
	Category    string      `json:"category"`
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Description string      `json:"description"`
}

// FixtureStore 预置数据读取与回写
// 读取时磁盘目录优先，缺失时使用内置数据；回写只写磁盘目录
type FixtureStore struct {
	dir string
	log *zap.Logger
}

// NewFixtureStore 创建预置数据存储
func NewFixtureStore(dir string, log *zap.Logger) *FixtureStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FixtureStore{dir: dir, log: log}
}

// Dir 磁盘目录
func (s *FixtureStore) Dir() string {
	return s.dir
}

// Path 文件在磁盘目录中的路径
func (s *FixtureStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Read 读取预置数据到 v，两处都不存在时 v 保持不变
func (s *FixtureStore) Read(name string, v interface{}) error {
	data, err := s.readBytes(name)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析预置数据 %s 失败: %w", name, err)
	}
	return nil
}

func (s *FixtureStore) readBytes(name string) ([]byte, error) {
	if s.dir != "" {
		data, err := os.ReadFile(s.Path(name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	data, err := bundled.ReadFile("fixtures/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// PersistSeedConfig 将站点信息回写到 system_settings.json，并写入 system_config.json
func (s *FixtureStore) PersistSeedConfig(cfg SeedConfig, backendPort int) error {
	var entries []settingEntry
	if err := s.Read(SystemSettingsFile, &entries); err != nil {
		s.log.Warn("读取 system_settings.json 失败，将重新生成", zap.Error(err))
		entries = nil
	}
	entries = upsertEntry(entries, "site", "domain", cfg.Domain, "服务器域名")
	entries = upsertEntry(entries, "site", "ip", cfg.ServerIP, "服务器IP")
	entries = upsertEntry(entries, "site", "backend_port", backendPort, "后端服务端口")

	if err := store.WriteJSON(s.Path(SystemSettingsFile), entries); err != nil {
		return err
	}
	return store.WriteJSON(s.Path(SystemConfigFile), cfg)
}

// LoadSeedConfig 读取 system_config.json，缺失字段使用 defaults
// system_config.json 未记录 server_ip/domain 时取 system_settings.json 的站点设置
func (s *FixtureStore) LoadSeedConfig(defaults SeedConfig) SeedConfig {
	cfg := defaults
	present := map[string]interface{}{}
	if err := s.Read(SystemConfigFile, &present); err != nil {
		s.log.Debug("读取 system_config.json 失败", zap.Error(err))
	} else if err := s.Read(SystemConfigFile, &cfg); err != nil {
		cfg = defaults
	}

	var entries []settingEntry
	if err := s.Read(SystemSettingsFile, &entries); err != nil {
		return cfg
	}
	for _, e := range entries {
		if e.Category != "site" {
			continue
		}
		switch e.Key {
		case "ip":
			if _, ok := present["server_ip"]; !ok {
				cfg.ServerIP = cast.ToString(e.Value)
			}
		case "domain":
			if _, ok := present["domain"]; !ok {
				cfg.Domain = cast.ToString(e.Value)
			}
		}
	}
	return cfg
}

func upsertEntry(entries []settingEntry, category, key string, value interface{}, description string) []settingEntry {
	v := cast.ToString(value)
	for i := range entries {
		if entries[i].Category == category && entries[i].Key == key {
			entries[i].Value = v
			if description != "" {
				entries[i].Description = description
			}
			return entries
		}
	}
	return append(entries, settingEntry{Category: category, Key: key, Value: v, Description: description})
}

// parseFixtureTime 解析预置数据中的时间，无时区时按本地时间
func parseFixtureTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间: %q", s)
}
