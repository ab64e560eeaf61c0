package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Requests RequestsConfig
	Alerts   AlertsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to validate bearer tokens issued by
// the external identity service. Token issuance itself lives outside this API.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig tunes product catalog reads.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// RequestsConfig governs item request numbering and listing limits.
type RequestsConfig struct {
	NumberPrefix string
	MaxListLimit int
}

// AlertsConfig controls the low-stock alert worker.
type AlertsConfig struct {
	Enabled     bool
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
	LatchTTL    time.Duration
	QueueBuffer int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Requests = RequestsConfig{
		NumberPrefix: v.GetString("REQUEST_NUMBER_PREFIX"),
		MaxListLimit: v.GetInt("REQUEST_MAX_LIST_LIMIT"),
	}

	cfg.Alerts = AlertsConfig{
		Enabled:     v.GetBool("ENABLE_STOCK_ALERTS"),
		Workers:     v.GetInt("STOCK_ALERT_WORKERS"),
		MaxRetries:  v.GetInt("STOCK_ALERT_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("STOCK_ALERT_RETRY_DELAY"), time.Second),
		LatchTTL:    parseDuration(v.GetString("STOCK_ALERT_LATCH_TTL"), 6*time.Hour),
		QueueBuffer: v.GetInt("STOCK_ALERT_QUEUE_BUFFER"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "inventopia")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("REQUEST_NUMBER_PREFIX", "REQ")
	v.SetDefault("REQUEST_MAX_LIST_LIMIT", 200)

	v.SetDefault("ENABLE_STOCK_ALERTS", true)
	v.SetDefault("STOCK_ALERT_WORKERS", 1)
	v.SetDefault("STOCK_ALERT_MAX_RETRIES", 3)
	v.SetDefault("STOCK_ALERT_RETRY_DELAY", "1s")
	v.SetDefault("STOCK_ALERT_LATCH_TTL", "6h")
	v.SetDefault("STOCK_ALERT_QUEUE_BUFFER", 16)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
