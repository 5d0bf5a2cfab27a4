package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Media    MediaConfig    `mapstructure:"media"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// MediaConfig 媒体存储：local 或 gridfs
type MediaConfig struct {
	Driver        string `mapstructure:"driver"`
	UploadDir     string `mapstructure:"upload_dir"`
	PublicPrefix  string `mapstructure:"public_prefix"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	Bucket        string `mapstructure:"bucket"`
	MaxPostFiles  int    `mapstructure:"max_post_files"`
	MaxFileSize   int64  `mapstructure:"max_file_size"`
	MaxAvatarSize int64  `mapstructure:"max_avatar_size"`
}

// NotifyConfig 通知总线：local, redis, nats
type NotifyConfig struct {
	Driver       string `mapstructure:"driver"`
	Channel      string `mapstructure:"channel"`
	NatsURL      string `mapstructure:"nats_url"`
	QueueSize    int    `mapstructure:"queue_size"`
	Workers      int    `mapstructure:"workers"`
	SessionQueue int    `mapstructure:"session_queue"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// FeedConfig 分页策略
type FeedConfig struct {
	DefaultLimit  int `mapstructure:"default_limit"`
	MaxLimit      int `mapstructure:"max_limit"`
	MaxUserLimit  int `mapstructure:"max_user_limit"`
	MaxTextLength int `mapstructure:"max_text_length"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "socialfeed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	v.SetDefault("jwt.secret", "change_this_secret")
	v.SetDefault("jwt.expiry", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "socialfeed")

	v.SetDefault("media.driver", "local")
	v.SetDefault("media.upload_dir", "./uploads")
	v.SetDefault("media.public_prefix", "/uploads")
	v.SetDefault("media.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("media.mongo_database", "socialfeed")
	v.SetDefault("media.bucket", "media")
	v.SetDefault("media.max_post_files", 6)
	v.SetDefault("media.max_file_size", 10<<20)
	v.SetDefault("media.max_avatar_size", 5<<20)

	v.SetDefault("notify.driver", "local")
	v.SetDefault("notify.channel", "socialfeed.notifications")
	v.SetDefault("notify.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("notify.queue_size", 10000)
	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.session_queue", 64)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "socialfeed")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("feed.default_limit", 20)
	v.SetDefault("feed.max_limit", 50)
	v.SetDefault("feed.max_user_limit", 100)
	v.SetDefault("feed.max_text_length", 5000)
}

// Load 读取 config/config.yaml 与环境变量（APP_ 前缀）
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Media.Driver {
	case "local", "gridfs":
	default:
		return fmt.Errorf("unsupported media driver %q", c.Media.Driver)
	}
	switch c.Notify.Driver {
	case "local", "redis", "nats":
	default:
		return fmt.Errorf("unsupported notify driver %q", c.Notify.Driver)
	}
	if c.Notify.Driver == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("notify driver redis requires redis.enabled")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must not be empty")
	}
	if c.Feed.MaxLimit <= 0 || c.Feed.DefaultLimit <= 0 {
		return fmt.Errorf("feed limits must be positive")
	}
	return nil
}
