// Package config loads tzresolve's settings the way
// malpanez-tempus/internal/config loads tempus's: viper over a YAML file
// in the user's config directory, with in-code defaults underneath and the
// CLI's flag overrides applied on top by the caller. Environment variables
// are not consulted.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds tzresolve's settings.
type Config struct {
	// DataDir is where tzdata source text (africa, europe, northamerica,
	// ...) is read from.
	DataDir string `mapstructure:"data_dir"`
	// DefaultZone is used by `resolve` when no zone argument is given; the
	// --zone flag overrides it.
	DefaultZone string `mapstructure:"default_zone"`
}

var defaults = Config{
	DefaultZone: "UTC",
}

// Load reads tzresolve's config file, falling back to in-code defaults for
// anything unset. configPath, if non-empty, is used instead of the
// standard search path (mirrors tempus's -c/--config flag).
func Load(configPath string) (*Config, error) {
	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	defaults.DataDir = dataDir

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("default_zone", defaults.DefaultZone)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		configDir, err := os.UserConfigDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(configDir, "tzresolve"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: the defaults set above stand.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultDataDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tzresolve", "tzdata"), nil
}
