package config

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"NoteMarket"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Env      string `envconfig:"APP_ENV" default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Port         int    `envconfig:"DB_PORT" default:"5432"`
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:""`
		Name         string `envconfig:"DB_NAME" default:"notemarket"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
		Issuer    string `envconfig:"JWT_ISSUER" default:"notemarket"`
		Audience  string `envconfig:"JWT_AUDIENCE" default:"notemarket-api"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Redis struct {
		Addr       string        `envconfig:"REDIS_ADDR"`
		Password   string        `envconfig:"REDIS_PASSWORD"`
		DB         int           `envconfig:"REDIS_DB" default:"0"`
		ListingTTL time.Duration `envconfig:"REDIS_LISTING_TTL" default:"5m"`
	}

	NATS struct {
		URL           string `envconfig:"NATS_URL"`
		SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"notemarket"`
	}

	Inquiry struct {
		TTL time.Duration `envconfig:"INQUIRY_TTL" default:"336h"`
	}

	Metrics struct {
		Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
		Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
	}

	Storage struct {
		Token string `envconfig:"STORAGE_TOKEN"`
	}

	Console struct {
		OperatorID string `envconfig:"CONSOLE_OPERATOR_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// LogLevel converts the configured level name, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) Validate() error {
	return validation.Errors{
		"PORT":       validation.Validate(c.App.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		"APP_ENV":    validation.Validate(c.App.Env, validation.Required, validation.In("development", "test", "production")),
		"LOG_LEVEL":  validation.Validate(c.App.LogLevel, validation.In("debug", "info", "warn", "error")),
		"DB_PORT":    validation.Validate(c.DB.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		"DB_NAME":    validation.Validate(c.DB.Name, validation.Required),
		"JWT_SECRET": validation.Validate(c.Auth.JWTSecret, validation.Required, validation.Length(32, 0)),
		"INQUIRY_TTL": validation.Validate(c.Inquiry.TTL,
			validation.Required, validation.Min(time.Hour)),
	}.Filter()
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
