package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the root of the sourcing API's open endpoints.
const DefaultBaseURL = "https://apiwww.rakumart.com/open/"

// Config holds all configuration for the application
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Search    SearchConfig    `mapstructure:"search"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// APIConfig holds credentials and endpoints of the sourcing API
type APIConfig struct {
	AppKey        string        `mapstructure:"app_key"`
	AppSecret     string        `mapstructure:"app_secret"`
	SignMethod    string        `mapstructure:"sign_method"` // "md5" or "hmac-sha256"
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
	ShopType      string        `mapstructure:"shop_type"`
	Endpoints     Endpoints     `mapstructure:"endpoints"`
}

// Endpoints holds one URL per remote operation
type Endpoints struct {
	Search             string `mapstructure:"search"`
	Detail             string `mapstructure:"detail"`
	ImageID            string `mapstructure:"image_id"`
	Logistics          string `mapstructure:"logistics"`
	Tags               string `mapstructure:"tags"`
	LogisticsTrack     string `mapstructure:"logistics_track"`
	CreateOrder        string `mapstructure:"create_order"`
	UpdateOrderStatus  string `mapstructure:"update_order_status"`
	CancelOrder        string `mapstructure:"cancel_order"`
	OrderList          string `mapstructure:"order_list"`
	OrderDetail        string `mapstructure:"order_detail"`
	StockList          string `mapstructure:"stock_list"`
	CreatePorder       string `mapstructure:"create_porder"`
	UpdatePorderStatus string `mapstructure:"update_porder_status"`
	CancelPorder       string `mapstructure:"cancel_porder"`
	PorderList         string `mapstructure:"porder_list"`
	PorderDetail       string `mapstructure:"porder_detail"`
}

// SearchConfig holds defaults for keyword search
type SearchConfig struct {
	PageSize     int     `mapstructure:"page_size"`
	ExchangeRate float64 `mapstructure:"exchange_rate"`
	WithDetail   bool    `mapstructure:"with_detail"`
	DetailLimit  int     `mapstructure:"detail_limit"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds the optional product sink. An empty DSN disables it.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds rate limiting configuration of the HTTP surface
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rakumart/")

	v.SetEnvPrefix("RAKUMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present. Variables
// already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Credentials have no compiled-in value; calls without them are rejected
	// by the API.
	v.SetDefault("api.app_key", "")
	v.SetDefault("api.app_secret", "")
	v.SetDefault("api.sign_method", "md5")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.rate_per_second", 5)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("api.shop_type", "1688")
	for key, path := range defaultEndpointPaths {
		v.SetDefault("api.endpoints."+key, DefaultBaseURL+path)
	}

	v.SetDefault("search.page_size", 20)
	v.SetDefault("search.exchange_rate", 20.0)
	v.SetDefault("search.with_detail", true)
	v.SetDefault("search.detail_limit", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("ratelimit.per_ip", 100)
}

var defaultEndpointPaths = map[string]string{
	"search":               "goods/keywordsSearch",
	"detail":               "goods/detail",
	"image_id":             "goods/getImageId",
	"logistics":            "currentUsefulLogistics",
	"tags":                 "currentUsefulTags",
	"logistics_track":      "logisticsTrack",
	"create_order":         "createOrder",
	"update_order_status":  "updateOrderStatus",
	"cancel_order":         "cancelOrder",
	"order_list":           "orderList",
	"order_detail":         "orderDetail",
	"stock_list":           "stockList",
	"create_porder":        "createPorder",
	"update_porder_status": "updatePorderStatus",
	"cancel_porder":        "cancelPorder",
	"porder_list":          "porderList",
	"porder_detail":        "porderDetail",
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.API.SignMethod {
	case "md5", "hmac-sha256":
	default:
		return fmt.Errorf("sign method must be 'md5' or 'hmac-sha256', got: %s", config.API.SignMethod)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got: %s", config.API.Timeout)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Database.DSN != "" && config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return fmt.Errorf("database driver must be 'postgres' or 'sqlite', got: %s", config.Database.Driver)
	}

	if config.Search.ExchangeRate <= 0 {
		return fmt.Errorf("exchange rate must be positive, got: %v", config.Search.ExchangeRate)
	}

	return nil
}
