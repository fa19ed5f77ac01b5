package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppName string `env:"APP_NAME,default=Survey Hub"`
	Port    string `env:"PORT,default=8080"`
	Debug   bool   `env:"DEBUG,default=false"`

	DBDriver    string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST,default=localhost"`
	DBPort      string `env:"DB_PORT,default=5432"`
	DBUser      string `env:"DB_USER,default=postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME,default=survey_hub"`
	DBSSLMode   string `env:"DB_SSLMODE,default=disable"`
	DBTimeZone  string `env:"DB_TIMEZONE,default=UTC"`
	SQLitePath  string `env:"SQLITE_PATH,default=survey-hub.sqlite"`

	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL,default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,default=false"`
	CORSOrigins  string        `env:"CORS_ORIGINS,default=http://localhost:3000"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	SubmitRatePerMin int `env:"SUBMIT_RATE_PER_MIN,default=30"`
	SubmitBurst      int `env:"SUBMIT_BURST,default=10"`
	LoginRatePerMin  int `env:"LOGIN_RATE_PER_MIN,default=10"`
	LoginBurst       int `env:"LOGIN_BURST,default=5"`

	ExportDir           string        `env:"EXPORT_DIR,default=./exports"`
	ExportRetention     time.Duration `env:"EXPORT_RETENTION,default=168h"`
	ExportSweepSchedule string        `env:"EXPORT_SWEEP_SCHEDULE,default=@every 1h"`

	SupabaseURL    string `env:"SUPABASE_URL"`
	SupabaseKey    string `env:"SUPABASE_KEY"`
	SupabaseBucket string `env:"SUPABASE_BUCKET,default=exports"`
}

// Load reads an optional .env file, then decodes the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (cfg Config) DSN() string {
	if cfg.DBDriver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000", cfg.SQLitePath)
	}
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, cfg.DBTimeZone)
}

func (cfg Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(cfg.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (cfg Config) Addr() string {
	return ":" + cfg.Port
}

func (cfg Config) SupabaseEnabled() bool {
	return cfg.SupabaseURL != "" && cfg.SupabaseKey != ""
}
