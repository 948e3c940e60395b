package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"bank-reconciliation-service/internal/matching"
)

type Config struct {
	ServerAddress string
	Environment   string
	Database      DatabaseConfig
	Migration     MigrationConfig
	Auth          AuthConfig
	RateLimit     string
	Log           LogConfig
	Matching      MatchingConfig
	Import        ImportConfig
	List          ListConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Params          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MigrationConfig struct {
	Dir string
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

type LogConfig struct {
	Level  string
	Format string
}

type MatchingConfig struct {
	AmountTolerance   decimal.Decimal
	DateWindowDays    int
	CandidatePoolSize int
	ExclusiveEntries  bool
}

type ImportConfig struct {
	MaxUploadBytes int64
	DateLayouts    []string
}

type ListConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "bank_reconciliation")
	v.SetDefault("DB_PARAMS", "charset=utf8mb4")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("MIGRATION_DIR", "migrations")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MATCH_AMOUNT_TOLERANCE", matching.DefaultAmountTolerance)
	v.SetDefault("MATCH_DATE_WINDOW_DAYS", matching.DefaultDateWindowDays)
	v.SetDefault("MATCH_CANDIDATE_POOL_SIZE", matching.DefaultCandidatePoolSize)
	v.SetDefault("MATCH_EXCLUSIVE_ENTRIES", false)
	v.SetDefault("IMPORT_MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("IMPORT_DATE_LAYOUTS", "")
	v.SetDefault("LIST_DEFAULT_LIMIT", 100)
	v.SetDefault("LIST_MAX_LIMIT", 100)
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(viper.New())
}

// Load builds a Config from v after applying defaults and environment binding.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	tolerance, err := decimal.NewFromString(v.GetString("MATCH_AMOUNT_TOLERANCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_AMOUNT_TOLERANCE %q: %w", v.GetString("MATCH_AMOUNT_TOLERANCE"), err)
	}
	if tolerance.IsNegative() {
		return nil, fmt.Errorf("MATCH_AMOUNT_TOLERANCE must not be negative")
	}

	lifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		Environment:   v.GetString("ENVIRONMENT"),
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			Params:          v.GetString("DB_PARAMS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Migration: MigrationConfig{
			Dir: v.GetString("MIGRATION_DIR"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			JWTIssuer: v.GetString("JWT_ISSUER"),
		},
		RateLimit: v.GetString("RATE_LIMIT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Matching: MatchingConfig{
			AmountTolerance:   tolerance,
			DateWindowDays:    v.GetInt("MATCH_DATE_WINDOW_DAYS"),
			CandidatePoolSize: v.GetInt("MATCH_CANDIDATE_POOL_SIZE"),
			ExclusiveEntries:  v.GetBool("MATCH_EXCLUSIVE_ENTRIES"),
		},
		Import: ImportConfig{
			MaxUploadBytes: v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
			DateLayouts:    splitList(v.GetString("IMPORT_DATE_LAYOUTS")),
		},
		List: ListConfig{
			DefaultLimit: v.GetInt("LIST_DEFAULT_LIMIT"),
			MaxLimit:     v.GetInt("LIST_MAX_LIMIT"),
		},
	}

	if cfg.Matching.DateWindowDays < 0 {
		return nil, fmt.Errorf("MATCH_DATE_WINDOW_DAYS must not be negative")
	}
	if cfg.Matching.CandidatePoolSize <= 0 {
		return nil, fmt.Errorf("MATCH_CANDIDATE_POOL_SIZE must be positive")
	}
	if cfg.List.MaxLimit <= 0 {
		return nil, fmt.Errorf("LIST_MAX_LIMIT must be positive")
	}
	if cfg.List.DefaultLimit <= 0 || cfg.List.DefaultLimit > cfg.List.MaxLimit {
		cfg.List.DefaultLimit = cfg.List.MaxLimit
	}
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; API requests will be rejected")
	}

	return cfg, nil
}

// splitList splits a "|"-separated setting. Date layouts contain commas and
// spaces, so those cannot be used as separators.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MatchingPolicy converts the matching settings into an engine policy.
func (c *Config) MatchingPolicy() matching.Policy {
	return matching.Policy{
		AmountTolerance:   c.Matching.AmountTolerance,
		DateWindowDays:    c.Matching.DateWindowDays,
		CandidatePoolSize: c.Matching.CandidatePoolSize,
		ExclusiveEntries:  c.Matching.ExclusiveEntries,
	}
}

// MySQLConfig returns the driver configuration for the application database.
func (c *Config) MySQLConfig() (*mysql.Config, error) {
	mc := mysql.NewConfig()
	mc.User = c.Database.User
	mc.Passwd = c.Database.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	mc.DBName = c.Database.Name
	mc.ParseTime = true
	mc.Loc = time.UTC

	if strings.TrimSpace(c.Database.Params) == "" {
		return mc, nil
	}
	// Re-parse so the driver interprets special keys such as charset itself.
	withParams, err := mysql.ParseDSN(mc.FormatDSN() + "&" + strings.TrimPrefix(c.Database.Params, "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PARAMS: %w", err)
	}
	return withParams, nil
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() (string, error) {
	mc, err := c.MySQLConfig()
	if err != nil {
		return "", err
	}
	return mc.FormatDSN(), nil
}

// GetMigrationDBURL returns the database URL for migrations
func (c *Config) GetMigrationDBURL() (string, error) {
	mc, err := c.MySQLConfig()
	if err != nil {
		return "", err
	}
	mc.MultiStatements = true
	return "mysql://" + mc.FormatDSN(), nil
}
