package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is read from the environment (and an optional .env file).
type Config struct {
	Port     string `env:"PORT,default=8080"`
	AppEnv   string `env:"APP_ENV,default=development"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret            string `env:"JWT_SECRET"`
	VerifyEmailJWTSecret string `env:"VERIFY_EMAIL_JWT_SECRET"`
	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	FacebookGraphURL     string `env:"FACEBOOK_GRAPH_URL,default=https://graph.facebook.com/v3.3"`

	SiteURL       string `env:"SITE_URL,default=https://www.goodjob.life"`
	SurveyFormURL string `env:"SURVEY_FORM_URL,default=https://docs.google.com/forms/d/e/1FAIpQLScie8Ii815plQoAtrtNjk_XPrxV_x3hBYRbMEshS-nLd4PL8A/viewform?usp=pp_url&entry.1421543239="`

	MailFrom             string `env:"MAIL_FROM,default=GoodJob <noreply@goodjob.life>"`
	GmailCredentialsFile string `env:"GMAIL_CREDENTIALS_FILE,default=credential.json"`
	GmailTokenFile       string `env:"GMAIL_TOKEN_FILE,default=token.json"`

	PerformanceEmailSchedule string `env:"PERFORMANCE_EMAIL_SCHEDULE"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=10"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS"`
}

// Load reads .env when present and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return &cfg, nil
}

// ValidateAPI checks the settings the API server cannot start without.
func (c *Config) ValidateAPI() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.VerifyEmailJWTSecret == "" {
		missing = append(missing, "VERIFY_EMAIL_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AllowedOrigins splits CORS_ALLOW_ORIGINS. An empty result allows every origin.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
