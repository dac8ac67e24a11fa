/*
Configuration is read from a JSON file into Config. Every field has a
usable zero-value default except DBFilePath and PoolSize, which callers
are expected to set.
*/
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// replacement policies selectable through Config.Replacer
const (
	// ReplacerClock is the clock (second-chance) policy, the default
	ReplacerClock = "clock"
	// ReplacerLRU is the strict least-recently-used policy
	ReplacerLRU = "lru"
)

// Config holds the buffer pool settings
type Config struct {
	// DBFilePath is the path of the database file
	DBFilePath string `json:"db_file_path"`
	// PoolSize is the number of frames in the buffer pool
	PoolSize int `json:"pool_size"`
	// Replacer selects the replacement policy. empty means clock
	Replacer string `json:"replacer"`
	// LogPath is the log file path. empty disables log initialization
	LogPath string `json:"log_path"`
	// LogLevel is the slog level name: DEBUG, INFO, WARN or ERROR
	LogLevel string `json:"log_level"`
}

// Load reads the JSON configuration file at path
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "os.Open failed")
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "json decode failed")
	}
	return &cfg, nil
}
