package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用进程配置（服务、日志、连接池、路径等运行参数）
// 业务配置（数据库账号、站点、密钥）见 Settings
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name         string        `mapstructure:"name"`
	Version      string        `mapstructure:"version"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库连接池配置
type DatabaseConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogMode         bool          `mapstructure:"log_mode"`
	EnsureDatabase  bool          `mapstructure:"ensure_database"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PathsConfig 状态文件与预置数据目录
type PathsConfig struct {
	StateDir string `mapstructure:"state_dir"`
	SeedDir  string `mapstructure:"seed_dir"`
}

// MonitoringConfig 监控端点配置
type MonitoringConfig struct {
	MetricsToken       string   `mapstructure:"metrics_token"`
	MetricsIPWhitelist []string `mapstructure:"metrics_ip_whitelist"`
}

// Load 加载配置文件
// 如果 configPath 为空，则根据环境变量 APP_ENV 自动选择配置文件
// 配置文件不存在时只使用默认值和 APP_ 前缀的环境变量
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	if configPath == "" {
		env := os.Getenv("APP_ENV")
		switch env {
		case "prod", "production":
			configPath = "config/config.prod.yaml"
		case "test", "testing":
			configPath = "config/config.test.yaml"
		case "dev", "development", "":
			configPath = "config/config.yaml"
		default:
			configPath = fmt.Sprintf("config/config.%s.yaml", env)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	// 支持环境变量覆盖配置
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败 [%s]: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return cfg, nil
}

// loadDotEnv 加载可选的 .env 文件，已存在的环境变量不会被覆盖
func loadDotEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "enteacher-core")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.read_timeout", 30*time.Second)
	v.SetDefault("app.write_timeout", 30*time.Second)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.ensure_database", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("paths.state_dir", "state")
	v.SetDefault("paths.seed_dir", "install/seed_data")
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
