package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName     string
	Environment string
	HTTPAddr    string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	Database DatabaseConfig

	UploadDir      string
	PagesDir       string
	BaseURL        string
	MaxUploadBytes int64

	Email EmailConfig
}

type DatabaseConfig struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type EmailConfig struct {
	SMTPHost    string
	SMTPPort    int
	Address     string
	Password    string
	From        string
	Subject     string
	Concurrency int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "payee-confirmation")
	v.SetDefault("environment", "development")
	v.SetDefault("http_addr", "")
	v.SetDefault("port", "10000")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "submissions.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("pages_dir", "static/confirm_pages")
	v.SetDefault("base_url", "http://localhost:10000")
	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("email.address", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.subject", "")
	v.SetDefault("notify.concurrency", 4)
}

// Load reads .env, an optional confirm.yml and the environment, in that
// order of increasing precedence. Nested keys map to env names with "_",
// so database.host is DATABASE_HOST.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("confirm")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/payee-confirmation")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		AppName:     v.GetString("app_name"),
		Environment: v.GetString("environment"),
		HTTPAddr:    strings.TrimSpace(v.GetString("http_addr")),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
		Database: DatabaseConfig{
			Type:            strings.ToLower(strings.TrimSpace(v.GetString("database.type"))),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			Name:            v.GetString("database.name"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		UploadDir:      v.GetString("upload_dir"),
		PagesDir:       v.GetString("pages_dir"),
		BaseURL:        strings.TrimRight(v.GetString("base_url"), "/"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		Email: EmailConfig{
			SMTPHost:    strings.TrimSpace(v.GetString("smtp.host")),
			SMTPPort:    v.GetInt("smtp.port"),
			Address:     strings.TrimSpace(v.GetString("email.address")),
			Password:    v.GetString("email.password"),
			From:        strings.TrimSpace(v.GetString("email.from")),
			Subject:     v.GetString("email.subject"),
			Concurrency: v.GetInt("notify.concurrency"),
		},
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":" + strings.TrimSpace(v.GetString("port"))
	}
	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Address
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Email.Concurrency < 1 {
		return fmt.Errorf("notify.concurrency must be at least 1, got %d", c.Email.Concurrency)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.Email.SMTPHost != "" && c.Email.From == "" {
		return errors.New("email.address or email.from is required when smtp.host is set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
