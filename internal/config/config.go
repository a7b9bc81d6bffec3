// Package config loads the optional assetsync configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Config represents the optional assetsync configuration file. Every field
// is a pointer so "unset" can be told apart from a zero value; command-line
// flags always take precedence.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Manifest   *string `toml:"manifest"`
	Root       *string `toml:"root"`
	Policy     *string `toml:"policy"`
	BufferSize *string `toml:"buffer_size"`
	BWLimit    *string `toml:"bwlimit"`
	TUI        *bool   `toml:"tui"`
	Quiet      *bool   `toml:"quiet"`
}

// ThemeConfig holds optional color overrides for the full-screen display.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Blue   *string `toml:"blue"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Mauve  *string `toml:"mauve"`
	Muted  *string `toml:"muted"`
	Dim    *string `toml:"dim"`
	Bright *string `toml:"bright"`
}

// Path returns the resolved path to the config file.
func Path() string {
	// xdg caches the environment at init; pick up changes made since.
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, "assetsync", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config file at path with the same rules as Load.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
