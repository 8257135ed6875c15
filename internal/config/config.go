package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
	ProviderLog    = "log"
)

type Config struct {
	Env               string `mapstructure:"APP_ENV"`
	HTTPAddr          string `mapstructure:"HTTP_ADDR"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	LegacyFreezeCover bool   `mapstructure:"LEGACY_FREEZE_COVER"`

	Security SecurityConfig `mapstructure:",squash"`
	Email    EmailConfig    `mapstructure:",squash"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	EmailRateRPM   int      `mapstructure:"EMAIL_RATE_LIMIT_RPM"`
}

type EmailConfig struct {
	Provider           string        `mapstructure:"EMAIL_PROVIDER"`
	ResendAPIKey       string        `mapstructure:"RESEND_API_KEY"`
	From               string        `mapstructure:"EMAIL_FROM"`
	InternalRecipients []string      `mapstructure:"EMAIL_INTERNAL_RECIPIENTS"`
	TemplateDir        string        `mapstructure:"EMAIL_TEMPLATE_DIR"`
	SendTimeout        time.Duration `mapstructure:"EMAIL_SEND_TIMEOUT"`
	SMTPAddr           string        `mapstructure:"SMTP_ADDR"`
	SMTPUsername       string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword       string        `mapstructure:"SMTP_PASSWORD"`
}

var defaults = map[string]any{
	"APP_ENV":                   "dev",
	"HTTP_ADDR":                 ":5000",
	"LOG_LEVEL":                 "info",
	"DATABASE_URL":              "sqlite:///posts.db",
	"LEGACY_FREEZE_COVER":       false,
	"ALLOWED_ORIGINS":           "http://localhost:3001,https://chilisites.com",
	"EMAIL_RATE_LIMIT_RPM":      30,
	"EMAIL_PROVIDER":            ProviderResend,
	"RESEND_API_KEY":            "",
	"EMAIL_FROM":                "ChiliSites <contacto@chilisites.com>",
	"EMAIL_INTERNAL_RECIPIENTS": "contacto@chilisites.com",
	"EMAIL_TEMPLATE_DIR":        "templates",
	"EMAIL_SEND_TIMEOUT":        "10s",
	"SMTP_ADDR":                 "",
	"SMTP_USERNAME":             "",
	"SMTP_PASSWORD":             "",
}

// Load reads configuration from the environment, after applying any .env file
// in the working directory. Variables already set take precedence.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = gotenv.Load(".env")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, key := range []string{"ALLOWED_ORIGINS", "EMAIL_INTERNAL_RECIPIENTS"} {
		v.Set(key, splitList(v.GetString(key)))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Email.Provider = strings.ToLower(strings.TrimSpace(cfg.Email.Provider))
	if cfg.IsDev() && cfg.Email.Provider == ProviderResend && cfg.Email.ResendAPIKey == "" {
		cfg.Email.Provider = ProviderLog
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.Security.EmailRateRPM < 0 {
		return fmt.Errorf("EMAIL_RATE_LIMIT_RPM must not be negative, got %d", c.Security.EmailRateRPM)
	}
	if c.Email.SendTimeout <= 0 {
		return fmt.Errorf("EMAIL_SEND_TIMEOUT must be positive, got %s", c.Email.SendTimeout)
	}

	switch c.Email.Provider {
	case ProviderResend:
		if c.Email.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required for the resend provider")
		}
	case ProviderSMTP:
		if c.Email.SMTPAddr == "" {
			return errors.New("SMTP_ADDR is required for the smtp provider")
		}
	case ProviderLog:
		if c.IsProd() {
			return errors.New("the log email provider cannot be used in prod")
		}
	default:
		return fmt.Errorf("invalid EMAIL_PROVIDER %q (must be resend, smtp, or log)", c.Email.Provider)
	}

	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
