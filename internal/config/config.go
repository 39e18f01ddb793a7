package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Billbook"`
		Env       string `envconfig:"APP_ENV" default:"development"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"billbook"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		FrontendURL string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	}

	Company struct {
		Name    string `envconfig:"COMPANY_NAME" default:"Billbook"`
		Address string `envconfig:"COMPANY_ADDRESS"`
		State   string `envconfig:"COMPANY_STATE" default:"Maharashtra"`
		GSTIN   string `envconfig:"COMPANY_GSTIN"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		CacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
	}

	Gotenberg struct {
		URL string `envconfig:"GOTENBERG_URL" default:"http://localhost:3001"`
	}

	TUI struct {
		UserID string `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// TUIUser is the user the terminal client acts as.
func (c *Config) TUIUser() (uuid.UUID, error) {
	if c.TUI.UserID == "" {
		return uuid.Nil, fmt.Errorf("TUI_USER_ID is not set")
	}

	id, err := uuid.Parse(c.TUI.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing TUI_USER_ID: %w", err)
	}

	return id, nil
}

// NewLogger picks the slog handler named by LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if c.App.Env == "development" {
		opts.Level = slog.LevelDebug
	}

	if strings.EqualFold(c.App.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
