package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Detroit Commons"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"commons"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Storage struct {
		BaseURL       string `envconfig:"STORAGE_BASE_URL"`
		PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL"`
		Token         string `envconfig:"STORAGE_TOKEN"`
	}

	Analysis struct {
		BaseURL string        `envconfig:"ANALYSIS_BASE_URL" default:"https://api.openai.com/v1"`
		APIKey  string        `envconfig:"ANALYSIS_API_KEY"`
		Model   string        `envconfig:"ANALYSIS_MODEL" default:"gpt-4o-mini"`
		Timeout time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"45s"`
	}

	Mail struct {
		Host      string `envconfig:"SMTP_HOST"`
		Port      int    `envconfig:"SMTP_PORT" default:"587"`
		User      string `envconfig:"SMTP_USER"`
		Password  string `envconfig:"SMTP_PASSWORD"`
		From      string `envconfig:"MAIL_FROM" default:"no-reply@detroitcommons.org"`
		AdminAddr string `envconfig:"MAIL_ADMIN" default:"treasury@detroitcommons.org"`
	}

	Admin struct {
		JWTSecret string `envconfig:"ADMIN_JWT_SECRET"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
