package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/focustank/internal/flagx"
	"github.com/dmitrijs2005/focustank/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// keep the current value.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DataDir             *string         `json:"data_dir"`
	DBFile              *string         `json:"db_file"`
	TuningFile          *string         `json:"tuning_file"`
	LogLevel            *string         `json:"log_level"`
	SyncTimeout         *timex.Duration `json:"sync_timeout"`
	WatchInterval       *timex.Duration `json:"watch_interval"`
}

// parseJson overlays Config with the file named by -c or -config. Panics
// on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DBFile, jc.DBFile)
	setString(&cfg.TuningFile, jc.TuningFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.SyncTimeout, jc.SyncTimeout)
	setDuration(&cfg.WatchInterval, jc.WatchInterval)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
