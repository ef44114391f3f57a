// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Training TrainingConfig `toml:"training"`
	Stats    StatsConfig    `toml:"stats"`
}

// TrainingConfig maps training-related settings.
type TrainingConfig struct {
	QuestionCount *int            `toml:"question-count"`
	Difficulty    *string         `toml:"difficulty"`
	SoundSpeed    *string         `toml:"sound-speed"`
	Mode          *string         `toml:"mode"`
	WordsFile     *string         `toml:"words-file"`
	Bell          *bool           `toml:"bell"`
	Thresholds    ThresholdConfig `toml:"thresholds"`
}

// ThresholdConfig overrides the difficulty cutoffs, in milliseconds.
type ThresholdConfig struct {
	Perfect *int64 `toml:"perfect"`
	Good    *int64 `toml:"good"`
	Miss    *int64 `toml:"miss"`
}

// StatsConfig maps stats-related settings.
type StatsConfig struct {
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
