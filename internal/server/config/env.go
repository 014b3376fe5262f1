package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FOCUSTANK_SERVER"

// parseEnv overlays FOCUSTANK_SERVER_* variables. Panics on malformed
// values.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		panic(err)
	}
}
