// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typeledger/internal/model"
)

// FileConfig represents the TOML configuration file. Nil fields are unset.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps the default test settings.
type PracticeConfig struct {
	Mode        *string   `toml:"mode"`
	Time        *int      `toml:"time"`
	Words       *int      `toml:"words"`
	Language    *string   `toml:"language"`
	WordList    *string   `toml:"wordlist"`
	Punctuation *bool     `toml:"punctuation"`
	Numbers     *bool     `toml:"numbers"`
	Difficulty  *string   `toml:"difficulty"`
	LazyMode    *bool     `toml:"lazy-mode"`
	Funbox      *[]string `toml:"funbox"`
}

// StorageConfig maps snapshot storage settings.
type StorageConfig struct {
	Path *string `toml:"path"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	p := c.Practice
	if p.Mode != nil {
		if _, err := model.ParseMode(*p.Mode); err != nil {
			return fmt.Errorf("practice.mode: %w", err)
		}
	}
	if p.Difficulty != nil {
		if _, err := model.ParseDifficulty(*p.Difficulty); err != nil {
			return fmt.Errorf("practice.difficulty: %w", err)
		}
	}
	if p.Time != nil && *p.Time <= 0 {
		return fmt.Errorf("practice.time must be > 0")
	}
	if p.Words != nil && *p.Words <= 0 {
		return fmt.Errorf("practice.words must be > 0")
	}
	return nil
}
