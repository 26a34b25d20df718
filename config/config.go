package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Store     StoreConfig     `mapstructure:"store"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Quota     QuotaConfig     `mapstructure:"quota"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds the token verification secret
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// OpenAIConfig holds extraction provider configuration
type OpenAIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Temperature       float64       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// StoreConfig selects the product store
type StoreConfig struct {
	Type string `mapstructure:"type"` // "supabase" or "mongo"
}

// SupabaseConfig holds the hosted database configuration. User profiles
// always live here.
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	Window  time.Duration `mapstructure:"window"`
	PerIP   int           `mapstructure:"per_ip"`
	Analyze int           `mapstructure:"analyze"`
}

// QuotaConfig holds the daily abuse thresholds
type QuotaConfig struct {
	DailyLimitFree    int `mapstructure:"daily_limit_free"`
	DailyLimitPremium int `mapstructure:"daily_limit_premium"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fabrix/")

	// Environment variable settings: FABRIX_OPENAI_API_KEY -> openai.api_key
	v.SetEnvPrefix("FABRIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
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

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env without overriding variables already set.
// A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "moz-extension://*"})
	v.SetDefault("server.max_body_bytes", 50*1024)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("auth.jwt_secret", "")

	// Extraction provider defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0)
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("openai.requests_per_second", 5)
	v.SetDefault("openai.burst", 10)

	// Store defaults
	v.SetDefault("store.type", "supabase")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.timeout", "15s")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "fabrix")
	v.SetDefault("mongo.collection", "products")
	v.SetDefault("mongo.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "168h") // 7 days

	// Rate limit defaults
	v.SetDefault("ratelimit.window", "15m")
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.analyze", 30)

	// Quota defaults
	v.SetDefault("quota.daily_limit_free", 20)
	v.SetDefault("quota.daily_limit_premium", 50)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set FABRIX_OPENAI_API_KEY)")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set FABRIX_AUTH_JWT_SECRET)")
	}

	if config.Supabase.URL == "" || config.Supabase.Key == "" {
		return fmt.Errorf("Supabase URL and key are required (set FABRIX_SUPABASE_URL and FABRIX_SUPABASE_KEY)")
	}

	switch config.Store.Type {
	case "supabase":
	case "mongo":
		if config.Mongo.URI == "" {
			return fmt.Errorf("Mongo URI is required when store type is 'mongo'")
		}
	default:
		return fmt.Errorf("store type must be 'supabase' or 'mongo', got: %s", config.Store.Type)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisAddr == "" {
		return fmt.Errorf("Redis address is required when cache type is 'redis'")
	}

	if config.RateLimit.Window <= 0 || config.RateLimit.PerIP <= 0 || config.RateLimit.Analyze <= 0 {
		return fmt.Errorf("rate limit window and allowances must be positive")
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max body size must be positive")
	}

	return nil
}
