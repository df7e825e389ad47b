// Package config loads the settings of the tabpool command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/state303/tabpool"
)

// Config is the top-level configuration.
type Config struct {
	Browser BrowserConfig            `mapstructure:"browser"`
	Pool    PoolConfig               `mapstructure:"pool"`
	Preload map[string]PreloadConfig `mapstructure:"preload"`
	Logging LoggingConfig            `mapstructure:"logging"`
}

// BrowserConfig holds the launcher settings.
type BrowserConfig struct {
	Bin      string `mapstructure:"bin"`
	Proxy    string `mapstructure:"proxy"`
	Headless bool   `mapstructure:"headless"`
}

// PoolConfig holds the pool settings.
type PoolConfig struct {
	Size int `mapstructure:"size"`
}

// PreloadConfig describes one label: where its pages are parked and which
// selector the warm command probes once they are loaded.
type PreloadConfig struct {
	URL      string `mapstructure:"url"`
	Selector string `mapstructure:"selector"`
}

// LoggingConfig holds the log level and the optional rotating log file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the configuration from configPath, or searches ./configs, . and
// ~/.tabpool for a config.yaml when configPath is empty. A missing file in the
// search path is not an error: defaults apply. TABPOOL_ prefixed environment
// variables override file values, e.g. TABPOOL_POOL_SIZE.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tabpool"))
		}
	}

	v.SetEnvPrefix("tabpool")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.headless", true)

	v.SetDefault("pool.size", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// Validate checks the values the pool cannot work without.
func (c *Config) Validate() error {
	if c.Pool.Size < 0 {
		return fmt.Errorf("pool size must not be negative, got %d", c.Pool.Size)
	}
	seen := make(map[string]string, len(c.Preload))
	for label, p := range c.Preload {
		if p.URL == "" {
			return fmt.Errorf("preload %q has no url", label)
		}
		key := tabpool.NormalizeLabel(label)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q and %q", tabpool.ErrDuplicateLabel, other, label)
		}
		seen[key] = label
	}
	return nil
}

// BrowserOptions converts the browser section into launcher options.
func (c *Config) BrowserOptions() tabpool.BrowserOptions {
	return tabpool.BrowserOptions{
		Bin:      c.Browser.Bin,
		Proxy:    c.Browser.Proxy,
		Headful:  !c.Browser.Headless,
	}
}

// PreloadTargets converts the preload section into the pool's configuration.
func (c *Config) PreloadTargets() tabpool.PreloadConfig {
	targets := make(tabpool.PreloadConfig, len(c.Preload))
	for label, p := range c.Preload {
		targets[label] = tabpool.PreloadTarget{URL: p.URL}
	}
	return targets
}
