package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FOCUSTANK"

// parseEnv overlays FOCUSTANK_* variables. Unset variables leave the field
// as is. Panics on malformed values.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		panic(err)
	}
}
