package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`

	LavalinkHost     string `env:"LAVALINK_HOST" envDefault:"localhost"`
	LavalinkPort     int    `env:"LAVALINK_PORT" envDefault:"2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD" envDefault:"youshallnotpass"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`

	DefaultVolume int    `env:"DEFAULT_VOLUME" envDefault:"50"`
	EngineLogPath string `env:"ENGINE_LOG_PATH" envDefault:"engine.log"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// New loads .env (if present) and parses the configuration from the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}
