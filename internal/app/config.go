package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// PGDSN enables the edit trail when set.
	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	AuthUser         string `envconfig:"AUTH_USER"`
	AuthPasswordHash string `envconfig:"AUTH_PASSWORD_HASH"`

	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	HintTimeout  time.Duration `envconfig:"HINT_TIMEOUT" default:"5s"`

	SheetURL          string        `envconfig:"SHEET_URL"`
	SheetsAPIKey      string        `envconfig:"SHEETS_API_KEY"`
	SheetFetchTimeout time.Duration `envconfig:"SHEET_FETCH_TIMEOUT" default:"30s"`
	SheetRefreshSpec  string        `envconfig:"SHEET_REFRESH_SPEC" default:"@every 60s"`

	AliasFile      string `envconfig:"ALIAS_FILE"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"20971520"`
	RowsPerPage    int    `envconfig:"ROWS_PER_PAGE" default:"100"`
}

// LoadConfig reads configuration from a local .env file, when present, and
// environment variables. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if (c.AuthUser == "") != (c.AuthPasswordHash == "") {
		return errors.New("AUTH_USER and AUTH_PASSWORD_HASH must be set together")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("upload limit must be positive")
	}
	if c.RowsPerPage <= 0 {
		return errors.New("rows per page must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AuthEnabled reports whether basic auth guards the API.
func (c *Config) AuthEnabled() bool {
	return c != nil && c.AuthUser != "" && c.AuthPasswordHash != ""
}
