package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Finsight"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finsight"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Enabled=false resolves every request to DemoUserID.
		Enabled    bool     `envconfig:"ENABLE_AUTH" default:"true"`
		Secret     string   `envconfig:"AUTH_SECRET"`
		DemoUserID string   `envconfig:"AUTH_DEMO_USER" default:"demo-user"`
		// AdminUsers may run and inspect batch jobs across all users.
		AdminUsers []string `envconfig:"AUTH_ADMIN_USERS"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	}

	Processing struct {
		Enabled        bool          `envconfig:"PROCESSING_ENABLED" default:"false"`
		DailySchedule  string        `envconfig:"PROCESSING_DAILY_SCHEDULE" default:"0 6 * * *"`
		WeeklySchedule string        `envconfig:"PROCESSING_WEEKLY_SCHEDULE" default:"0 2 * * 0"`
		Concurrency    int           `envconfig:"PROCESSING_CONCURRENCY" default:"4"`
		JobRetention   time.Duration `envconfig:"PROCESSING_JOB_RETENTION" default:"168h"`
		UserTimeout    time.Duration `envconfig:"PROCESSING_USER_TIMEOUT" default:"2m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) validate() error {
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_SECRET is required when ENABLE_AUTH is true")
	}

	if c.Processing.Concurrency < 1 {
		return fmt.Errorf("PROCESSING_CONCURRENCY must be at least 1, got %d", c.Processing.Concurrency)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
