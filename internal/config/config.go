package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log" json:"log"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// ServerConfig describes the MLflow server to talk to
type ServerConfig struct {
	URL     string        `mapstructure:"url" yaml:"url" json:"url"`
	UIPath  string        `mapstructure:"ui_path" yaml:"ui_path" json:"ui_path"` // where the runtime config.json is served
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "json" or "text"
	Level  string `mapstructure:"level" yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
}

// OutputConfig controls how commands print results
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "table" or "json"
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"server.url",
	"server.ui_path",
	"server.timeout",
	"log.format",
	"log.level",
	"output.format",
}

const fileName = "config.yaml"

// Dir returns the directory holding config.yaml.
func Dir() (string, error) {
	if dir := os.Getenv("MLPERM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "mlperm"), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.url", "")
	v.SetDefault("server.ui_path", "/oidc/ui")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "warn")
	v.SetDefault("output.format", "table")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MLPERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("output.format must be table or json, got %q", c.Output.Format)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	return nil
}

// Set updates key in the config file, creating it when missing. Only the
// file is touched; environment overrides still apply on the next Load.
func Set(key, value string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if key == "server.timeout" {
		if _, err := time.ParseDuration(value); err != nil {
			return "", fmt.Errorf("server.timeout: %w", err)
		}
	}

	dir, err := Dir()
	if err != nil {
		return "", fmt.Errorf("determining config directory: %w", err)
	}
	path := filepath.Join(dir, fileName)

	doc := map[string]map[string]string{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	section, name, _ := strings.Cut(key, ".")
	if doc[section] == nil {
		doc[section] = map[string]string{}
	}
	doc[section][name] = value

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func validKey(key string) bool {
	i := sort.SearchStrings(sortedKeys, key)
	return i < len(sortedKeys) && sortedKeys[i] == key
}

var sortedKeys = func() []string {
	k := append([]string(nil), Keys...)
	sort.Strings(k)
	return k
}()
