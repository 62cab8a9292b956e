package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath      string     `env:"DB_PATH" envDefault:"data/quissme.db"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL    string     `env:"REDIS_URL"`
	CatalogPath string     `env:"CATALOG_PATH"`

	// Answers are only accepted for activated quizzes when set.
	RequireActivation bool `env:"REQUIRE_ACTIVATION" envDefault:"true"`
	WeeklyActivations int  `env:"WEEKLY_ACTIVATIONS" envDefault:"3"`
	MaxActiveQuizzes  int  `env:"MAX_ACTIVE_QUIZZES" envDefault:"3"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.WeeklyActivations < 1 || cfg.MaxActiveQuizzes < 1 {
		return nil, fmt.Errorf("activation limits must be positive, got weekly=%d active=%d",
			cfg.WeeklyActivations, cfg.MaxActiveQuizzes)
	}
	return &cfg, nil
}
