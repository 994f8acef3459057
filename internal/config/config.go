package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	DataDir        string        `mapstructure:"DATA_DIR"`
	TemplatesDir   string        `mapstructure:"TEMPLATES_DIR"`
	ReportsAmbDir  string        `mapstructure:"REPORTS_AMB_DIR"`
	ReportsProcDir string        `mapstructure:"REPORTS_PROC_DIR"`
	FormsTempDir   string        `mapstructure:"FORMS_TEMP_DIR"`
	TempFileTTL    time.Duration `mapstructure:"TEMP_FILE_TTL"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"DATA_DIR", "TEMPLATES_DIR", "REPORTS_AMB_DIR", "REPORTS_PROC_DIR",
	"FORMS_TEMP_DIR", "TEMP_FILE_TTL", "MIGRATIONS_DIR", "CORS_ORIGINS", "BODY_LIMIT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("TEMPLATES_DIR", ".")
	v.SetDefault("TEMP_FILE_TTL", "10m")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "2M")

	// Unmarshal only sees env vars that are bound
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the values Load cannot check by type alone.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.TempFileTTL <= 0 {
		return fmt.Errorf("TEMP_FILE_TTL must be positive, got %s", c.TempFileTTL)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// AmbulatoryDir is where ambulatory reports are written.
func (c *Config) AmbulatoryDir() string {
	if c.ReportsAmbDir != "" {
		return c.ReportsAmbDir
	}
	return filepath.Join(c.DataDir, "referti")
}

// ProceduralDir is where procedural sheets are written. Without an explicit
// setting they go in a subfolder of the ambulatory directory.
func (c *Config) ProceduralDir() string {
	switch {
	case c.ReportsProcDir != "":
		return c.ReportsProcDir
	case c.ReportsAmbDir != "":
		return filepath.Join(c.ReportsAmbDir, "Schede procedurali")
	default:
		return filepath.Join(c.DataDir, "referti")
	}
}

// FormsDir holds consent and blood-test forms, which are deleted after
// TempFileTTL.
func (c *Config) FormsDir() string {
	if c.FormsTempDir != "" {
		return c.FormsTempDir
	}
	return filepath.Join(os.TempDir(), "tavi_moduli")
}
