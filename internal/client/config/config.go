package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the focustank CLI.
type Config struct {
	ServerEndpointAddr  string        `envconfig:"SERVER_ADDR"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	DataDir             string        `envconfig:"DATA_DIR"`
	DBFile              string        `envconfig:"DB_FILE"`
	TuningFile          string        `envconfig:"TUNING_FILE"`
	LogLevel            string        `envconfig:"LOG_LEVEL"`
	SyncTimeout         time.Duration `envconfig:"SYNC_TIMEOUT"`
	WatchInterval       time.Duration `envconfig:"WATCH_INTERVAL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DataDir = "~/.focustank"
	c.DBFile = "focustank.db"
	c.LogLevel = "warn"
	c.SyncTimeout = 15 * time.Second
	c.WatchInterval = time.Second
}

// DSN is the sqlite path inside DataDir. DataDir must already be resolved.
func (c *Config) DSN() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays JSON,
// environment and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
