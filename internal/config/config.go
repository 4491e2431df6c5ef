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

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"` // production включает Secure у cookie
	AppPort string `mapstructure:"APP_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- S3 ---
	S3Endpoint   string `mapstructure:"S3_ENDPOINT"`
	S3Region     string `mapstructure:"S3_REGION"`
	S3Bucket     string `mapstructure:"S3_BUCKET"`
	S3AccessKey  string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey  string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL     bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle  bool   `mapstructure:"S3_PATH_STYLE"`
	S3RootPrefix string `mapstructure:"S3_ROOT_PREFIX"` // общий префикс деплоймента, может быть пустым

	// --- Redis ---
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- Auth ---
	AuthJWTSecret string        `mapstructure:"AUTH_JWT_SECRET"`
	AuthIssuer    string        `mapstructure:"AUTH_ISSUER"`
	AuthTokenTTL  time.Duration `mapstructure:"AUTH_TOKEN_TTL"` // по умолчанию 168h (7 дней)

	// --- Login throttle ---
	LoginMaxAttempts int           `mapstructure:"LOGIN_MAX_ATTEMPTS"`
	LoginBlockFor    time.Duration `mapstructure:"LOGIN_BLOCK_FOR"`

	// --- Seed admin (создаётся на старте, если живых админов нет) ---
	SeedAdminUsername string `mapstructure:"SEED_ADMIN_USERNAME"`
	SeedAdminPassword string `mapstructure:"SEED_ADMIN_PASSWORD"`
}

// String реализует интерфейс Stringer; секреты маскируем.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))
	sb.WriteString(masked("DBPassword", c.DBPassword))

	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString(fmt.Sprintf("  S3RootPrefix: %q\n", c.S3RootPrefix))
	sb.WriteString(masked("S3AccessKey", c.S3AccessKey))
	sb.WriteString(masked("S3SecretKey", c.S3SecretKey))
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(masked("RedisPassword", c.RedisPassword))

	sb.WriteString(masked("AuthJWTSecret", c.AuthJWTSecret))
	sb.WriteString(fmt.Sprintf("  AuthIssuer: %s\n", c.AuthIssuer))
	sb.WriteString(fmt.Sprintf("  AuthTokenTTL: %s\n", c.AuthTokenTTL))
	sb.WriteString(fmt.Sprintf("  LoginMaxAttempts: %d\n", c.LoginMaxAttempts))
	sb.WriteString(fmt.Sprintf("  LoginBlockFor: %s\n", c.LoginBlockFor))
	sb.WriteString(fmt.Sprintf("  SeedAdminUsername: %s\n", c.SeedAdminUsername))
	sb.WriteString(masked("SeedAdminPassword", c.SeedAdminPassword))

	return sb.String()
}

func masked(name, val string) string {
	if val == "" {
		return fmt.Sprintf("  %s: (empty)\n", name)
	}
	return fmt.Sprintf("  %s: ********\n", name)
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	keys := []string{
		"APP_ENV", "APP_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE", "S3_ROOT_PREFIX",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_TOKEN_TTL",
		"LOGIN_MAX_ATTEMPTS", "LOGIN_BLOCK_FOR",
		"SEED_ADMIN_USERNAME", "SEED_ADMIN_PASSWORD",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_SCHEME", "public")
	v.SetDefault("AUTH_ISSUER", "s3-output-manager")
	v.SetDefault("AUTH_TOKEN_TTL", "168h")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 3)
	v.SetDefault("LOGIN_BLOCK_FOR", "15m")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.AuthJWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required")
	}
	return &cfg, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }
