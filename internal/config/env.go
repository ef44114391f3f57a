package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Paths are the file locations used by the CLI.
type Paths struct {
	DB     string `env:"TUIEAR_DB_PATH"`
	Config string `env:"TUIEAR_CONFIG_PATH"`
	Words  string `env:"TUIEAR_WORDS_PATH"`
}

// ResolvePaths returns the XDG defaults overridden by environment variables.
func ResolvePaths() (Paths, error) {
	paths := Paths{
		DB:     DefaultDBPath(),
		Config: DefaultConfigPath(),
		Words:  DefaultWordsPath(),
	}
	if err := env.Parse(&paths); err != nil {
		return Paths{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return paths, nil
}
