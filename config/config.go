package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// ErrConfig marks a missing or invalid setting. Startup must stop on it.
var ErrConfig = errors.New("configuration error")

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RequiredSchemaVersion uint

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret string
	TokenTTL  time.Duration

	EmailAPIURL string
	EmailAPIKey string
	EmailFrom   string
	AppLoginURL string

	AdminBotToken string
	AdminChatID   int64

	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "ridebook"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "ridebook"))
	cfg.RequiredSchemaVersion = cast.ToUint(getOrReturnDefault("REQUIRED_SCHEMA_VERSION", 2))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", ""))
	cfg.TokenTTL = cast.ToDuration(getOrReturnDefault("TOKEN_TTL", "24h"))

	cfg.EmailAPIURL = cast.ToString(getOrReturnDefault("EMAIL_API_URL", "https://api.resend.com"))
	cfg.EmailAPIKey = cast.ToString(getOrReturnDefault("EMAIL_API_KEY", ""))
	cfg.EmailFrom = cast.ToString(getOrReturnDefault("EMAIL_FROM", ""))
	cfg.AppLoginURL = cast.ToString(getOrReturnDefault("APP_LOGIN_URL", "http://localhost:3000/login"))

	cfg.AdminBotToken = cast.ToString(getOrReturnDefault("ADMIN_BOT_TOKEN", ""))
	cfg.AdminChatID = cast.ToInt64(getOrReturnDefault("ADMIN_CHAT_ID", 0))

	cfg.AdminEmail = cast.ToString(getOrReturnDefault("ADMIN_EMAIL", ""))
	cfg.AdminPassword = cast.ToString(getOrReturnDefault("ADMIN_PASSWORD", ""))

	return cfg
}

// Validate checks the settings without which no request can be served.
// Email and Telegram settings are optional: those steps are best-effort.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrConfig)
	}
	if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
		return fmt.Errorf("%w: POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER are required", ErrConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrConfig)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("%w: ADMIN_EMAIL and ADMIN_PASSWORD must be set together", ErrConfig)
	}
	return nil
}

func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
