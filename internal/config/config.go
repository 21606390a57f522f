package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix        = "INFLUXSYNC"
	defaultServerURL = "http://localhost:8086"
	defaultConfigDir = "schema"
	defaultLogLevel  = "info"
)

// AppConfig captures runtime configuration for one reconciliation run.
type AppConfig struct {
	ServerURL string
	ConfigDir string
	LogLevel  string
	DryRun    bool
	Force     bool
	Diff      bool
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("server.url", defaultServerURL)
	configViper.SetDefault("config.dir", defaultConfigDir)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("run.dry_run", false)
	configViper.SetDefault("run.force", false)
	configViper.SetDefault("run.diff", false)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		ServerURL: configViper.GetString("server.url"),
		ConfigDir: configViper.GetString("config.dir"),
		LogLevel:  configViper.GetString("log.level"),
		DryRun:    configViper.GetBool("run.dry_run"),
		Force:     configViper.GetBool("run.force"),
		Diff:      configViper.GetBool("run.diff"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server.url is required")
	}
	if strings.TrimSpace(c.ConfigDir) == "" {
		return fmt.Errorf("config.dir is required")
	}
	return nil
}
