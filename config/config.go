// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string        `env:"PORT"             envDefault:"5000"`
	MongoURI       string        `env:"MONGO_URI"        envDefault:"mongodb://localhost:27017"`
	MongoDB        string        `env:"MONGO_DB"         envDefault:"task_db"`
	DBTimeout      time.Duration `env:"DB_TIMEOUT"       envDefault:"5s"`
	Store          string        `env:"STORE"            envDefault:"mongo"`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL         time.Duration `env:"JWT_TTL"          envDefault:"24h"`
	UploadDir      string        `env:"UPLOAD_DIR"       envDefault:"uploads"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`
	LogLevel       slog.Level    `env:"LOG_LEVEL"        envDefault:"info"`
}

// Load reads the given .env files (default ".env"; missing files are
// ignored) and then parses the environment. Variables already set in the
// process environment win over .env values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}
