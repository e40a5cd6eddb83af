package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseDriver         string
	DatabaseURL            string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	MetricsCacheTTLSeconds int
	AuthSecret             string
	AccessTokenTTLMinutes  int
	ManagerPIN             string
	LogLevel               string
	LogFormat              string
	DefaultPhoneRegion     string
	CodeSeed               uint64
	BootstrapShopName      string
	BootstrapShopSlug      string
	BootstrapAdminUser     string
	BootstrapAdminPassword string
}

// Load reads configuration from a .env file (when present), an optional
// CONFIG_FILE and the process environment, in increasing precedence.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("METRICS_CACHE_TTL_SECONDS", 60)
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_PHONE_REGION", "US")
	v.SetDefault("CODE_SEED", 0)
	v.SetDefault("BOOTSTRAP_ADMIN_USER", "admin")

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		_ = v.ReadInConfig()
	}

	ttl := v.GetInt("METRICS_CACHE_TTL_SECONDS")
	if ttl < 1 {
		ttl = 60
	}
	tokenTTL := v.GetInt("ACCESS_TOKEN_TTL_MINUTES")
	if tokenTTL < 1 {
		tokenTTL = 480
	}
	driver := strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER")))
	if driver != "sqlite" {
		driver = "postgres"
	}

	return Config{
		Port:                   v.GetString("PORT"),
		AllowedOrigin:          v.GetString("ALLOWED_ORIGIN"),
		DatabaseDriver:         driver,
		DatabaseURL:            strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisAddr:              strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		MetricsCacheTTLSeconds: ttl,
		AuthSecret:             strings.TrimSpace(v.GetString("AUTH_SECRET")),
		AccessTokenTTLMinutes:  tokenTTL,
		ManagerPIN:             strings.TrimSpace(v.GetString("MANAGER_PIN")),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
		DefaultPhoneRegion:     strings.ToUpper(strings.TrimSpace(v.GetString("DEFAULT_PHONE_REGION"))),
		CodeSeed:               v.GetUint64("CODE_SEED"),
		BootstrapShopName:      strings.TrimSpace(v.GetString("BOOTSTRAP_SHOP_NAME")),
		BootstrapShopSlug:      strings.ToLower(strings.TrimSpace(v.GetString("BOOTSTRAP_SHOP_SLUG"))),
		BootstrapAdminUser:     strings.ToLower(strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_USER"))),
		BootstrapAdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
