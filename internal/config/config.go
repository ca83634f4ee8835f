package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	TokenTTL    int      `mapstructure:"TOKEN_TTL_HOURS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	BackupDir   string   `mapstructure:"BACKUP_DIR"`
	PGDumpPath  string   `mapstructure:"PG_DUMP_PATH"`
	PSQLPath    string   `mapstructure:"PSQL_PATH"`

	// Object storage for procedure file attachments. Attachments are
	// disabled when no endpoint is configured.
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_HOURS", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BACKUP_DIR", "/tmp")
	v.SetDefault("PG_DUMP_PATH", "pg_dump")
	v.SetDefault("PSQL_PATH", "psql")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "irlog-files")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_HOURS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("BACKUP_DIR")
	v.BindEnv("PG_DUMP_PATH")
	v.BindEnv("PSQL_PATH")
	v.BindEnv("MINIO_ENDPOINT")
	v.BindEnv("MINIO_ACCESS_KEY")
	v.BindEnv("MINIO_SECRET_KEY")
	v.BindEnv("MINIO_USE_SSL")
	v.BindEnv("MINIO_BUCKET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret must be configured so that sessions cannot be forged.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", c.TokenTTL)
	}
	return nil
}
