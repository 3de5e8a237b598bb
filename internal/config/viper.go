package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance configured for SUBAGENT_* environment
// variables and an optional config file.
//
// Search order when configFile is empty:
//   - $HOME/.subagent/config.(yaml|yml|json|toml|...)
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SUBAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v, nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(home, ".subagent"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, err
	}

	return v, nil
}

// FromViper builds a Config from viper values. Flag handling layers CLI
// overrides on top of this.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Command:       strings.TrimSpace(v.GetString("command")),
		Timeout:       v.GetInt("timeout"),
		BaseURL:       strings.TrimSpace(v.GetString("base_url")),
		APIKey:        strings.TrimSpace(v.GetString("api_key")),
		EnabledModels: EnabledModels(v),
	}
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return cfg
}

// EnabledModels reads the enabled-model allow-list. A missing or unreadable
// value is "no restriction", never an error.
func EnabledModels(v *viper.Viper) []string {
	raw := v.GetStringSlice("enabled_models")
	models := make([]string, 0, len(raw))
	for _, m := range raw {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			models = append(models, m)
		}
	}
	return models
}
