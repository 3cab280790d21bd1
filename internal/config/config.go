package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Clicks    ClicksConfig
	Analytics AnalyticsConfig
	GeoIP     GeoIPConfig
}

type AppConfig struct {
	Port     string
	Env      string
	BaseURL  string
	CacheTTL time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LimitConfig: не более Max запросов с одного IP за Window
type LimitConfig struct {
	Max    int
	Window time.Duration
}

type RateLimitConfig struct {
	Create    LimitConfig
	Analytics LimitConfig
}

type ClicksConfig struct {
	Workers    int
	BufferSize int
}

type AnalyticsConfig struct {
	WindowDays int
}

type GeoIPConfig struct {
	DBPath string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.Env = v.GetString("APP_ENV")
	cfg.App.BaseURL = v.GetString("APP_BASE_URL")
	cfg.App.CacheTTL = v.GetDuration("CACHE_TTL")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")
	cfg.DB.MaxConns = v.GetInt32("DB_MAX_CONNS")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	cfg.Auth.TokenTTL = v.GetDuration("JWT_TTL")

	cfg.RateLimit.Create = LimitConfig{
		Max:    v.GetInt("CREATE_LIMIT_MAX"),
		Window: v.GetDuration("CREATE_LIMIT_WINDOW"),
	}
	cfg.RateLimit.Analytics = LimitConfig{
		Max:    v.GetInt("ANALYTICS_LIMIT_MAX"),
		Window: v.GetDuration("ANALYTICS_LIMIT_WINDOW"),
	}

	cfg.Clicks.Workers = v.GetInt("CLICK_WORKERS")
	cfg.Clicks.BufferSize = v.GetInt("CLICK_BUFFER_SIZE")

	cfg.Analytics.WindowDays = v.GetInt("ANALYTICS_WINDOW_DAYS")

	cfg.GeoIP.DBPath = v.GetString("GEOIP_DB_PATH")

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("CACHE_TTL", 24*time.Hour)

	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_TTL", 30*24*time.Hour)

	// 10 созданий ссылок и 100 запросов аналитики за 15 минут с одного IP
	v.SetDefault("CREATE_LIMIT_MAX", 10)
	v.SetDefault("CREATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("ANALYTICS_LIMIT_MAX", 100)
	v.SetDefault("ANALYTICS_LIMIT_WINDOW", 15*time.Minute)

	v.SetDefault("CLICK_WORKERS", 3)
	v.SetDefault("CLICK_BUFFER_SIZE", 1000)

	v.SetDefault("ANALYTICS_WINDOW_DAYS", 7)
}
