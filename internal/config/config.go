package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPAddr     string   `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL  string   `env:"DATABASE_URL"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	CurrencyCode string   `env:"CURRENCY_CODE" envDefault:"USD"`
	Locale       string   `env:"LOCALE" envDefault:"en"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	// role=Permission|Permission;role=...
	RoleGrants string `env:"ROLE_GRANTS" envDefault:"cashier=NavigateAccountView|MakeAccountTransaction"`
}

// Load reads dotenvFiles (missing files are ignored) and parses the environment.
// Variables already set in the environment win over the files.
func Load(dotenvFiles ...string) (Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
