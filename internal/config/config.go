package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release / test

	// 批量导入导出限流 (每个用户/IP)
	BulkRatePerMinute int `mapstructure:"bulk_rate_per_minute"`
	BulkBurst         int `mapstructure:"bulk_burst"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	LogLevel string `mapstructure:"log_level"` // silent / error / warn / info
}

// DSN 拼接 Postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// StorageConfig 商品图片存储配置
type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // local / s3
	BasePath  string `mapstructure:"base_path"`
	PublicURL string `mapstructure:"public_url"` // local 模式下的访问前缀，必须是绝对 URL
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"` // S3 兼容存储 (MinIO / COS)
	CDNDomain string `mapstructure:"cdn_domain"`
}

// JWTConfig 鉴权配置，Secret 为空时关闭鉴权
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// RedisConfig 标签词表缓存，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ImportConfig 批量导入配置
type ImportConfig struct {
	MaxFileSizeKB int64 `mapstructure:"max_file_size_kb"`
	BatchSize     int   `mapstructure:"batch_size"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / console
}

// TasksConfig 定时任务配置
type TasksConfig struct {
	ImportLogRetentionDays int    `mapstructure:"import_log_retention_days"`
	ImportLogCleanupSpec   string `mapstructure:"import_log_cleanup_spec"`
}

// Load 加载配置
// 优先级: 环境变量 > config.yaml > 默认值
// configPath 为空时在 . 和 ./config 下查找 config.yaml
func Load(configPath string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// server.port -> SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验关键配置
func (c *Config) Validate() error {
	if c.Import.MaxFileSizeKB <= 0 {
		return fmt.Errorf("import.max_file_size_kb 必须大于 0")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batch_size 必须大于 0")
	}
	switch c.Storage.Provider {
	case "local", "s3":
	default:
		return fmt.Errorf("不支持的存储提供者: %s", c.Storage.Provider)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.bulk_rate_per_minute", 6)
	v.SetDefault("server.bulk_burst", 3)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_path", "./storage")
	v.SetDefault("storage.public_url", "http://localhost:8080/storage")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.cdn_domain", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "catalog-admin")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("import.max_file_size_kb", 5120)
	v.SetDefault("import.batch_size", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tasks.import_log_retention_days", 30)
	v.SetDefault("tasks.import_log_cleanup_spec", "0 30 3 * * *")
}
