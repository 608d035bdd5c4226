// Package config loads ddlkit settings from a file, the environment and
// command line flags, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tordrt/ddlkit/internal/platform"
)

// EnvPrefix prefixes the environment variables, e.g. DDLKIT_CONNECTION_URL.
const EnvPrefix = "DDLKIT"

type Config struct {
	Platform string `mapstructure:"platform"`

	Connection struct {
		Driver     string            `mapstructure:"driver"`
		URL        string            `mapstructure:"url"`
		Username   string            `mapstructure:"username"`
		Password   string            `mapstructure:"password"`
		Parameters map[string]string `mapstructure:"parameters"`
	} `mapstructure:"connection"`

	Reader struct {
		Catalog    string   `mapstructure:"catalog"`
		Schema     string   `mapstructure:"schema"`
		TableTypes []string `mapstructure:"table_types"`
	} `mapstructure:"reader"`

	Build struct {
		Strict               bool `mapstructure:"strict"`
		CaseSensitive        bool `mapstructure:"case_sensitive"`
		DelimitedIdentifiers bool `mapstructure:"delimited_identifiers"`
		ContinueOnError      bool `mapstructure:"continue_on_error"`
		DropFirst            bool `mapstructure:"drop_first"`
	} `mapstructure:"build"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

var defaults = map[string]any{
	"platform":                    "",
	"connection.driver":           "",
	"connection.url":              "",
	"connection.username":         "",
	"connection.password":         "",
	"reader.catalog":              "",
	"reader.schema":               "",
	"reader.table_types":          []string{},
	"build.strict":                false,
	"build.case_sensitive":        false,
	"build.delimited_identifiers": false,
	"build.continue_on_error":     false,
	"build.drop_first":            false,
	"log.level":                   "warn",
	"log.format":                  "text",
}

// New returns a viper instance with the defaults and environment binding.
// Environment variables are only consulted for keys with a default.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes the given flags override the keys they are mapped to.
// Flags missing from the set are ignored.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, flag := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the optional config file at path into v and decodes the result.
// The file type follows the extension: yaml, json or toml.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads the config file at path with environment overrides.
func LoadConfig(path string) (*Config, error) {
	return Load(New(), path)
}

// ConnectionConfig returns the connection settings for the platform layer.
func (c *Config) ConnectionConfig() platform.ConnectionConfig {
	return platform.ConnectionConfig{
		Driver:     c.Connection.Driver,
		URL:        c.Connection.URL,
		Username:   c.Connection.Username,
		Password:   c.Connection.Password,
		Parameters: c.Connection.Parameters,
	}
}

// ReadOptions returns the reader filters; empty ones fall back to the
// dialect defaults.
func (c *Config) ReadOptions(name string) platform.ReadOptions {
	return platform.ReadOptions{
		Name:       name,
		Catalog:    c.Reader.Catalog,
		Schema:     c.Reader.Schema,
		TableTypes: c.Reader.TableTypes,
	}
}

// PlatformOptions returns the builder switches as platform options.
func (c *Config) PlatformOptions() []platform.Option {
	return []platform.Option{
		platform.WithStrict(c.Build.Strict),
		platform.WithCaseSensitive(c.Build.CaseSensitive),
		platform.WithDelimitedIdentifiers(c.Build.DelimitedIdentifiers),
	}
}
