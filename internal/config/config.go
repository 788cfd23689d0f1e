package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the proxyman console.
type Config struct {
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
}

// ClientConfig configures backend connectivity and local files.
type ClientConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// SessionConfig configures session persistence and timer windows.
type SessionConfig struct {
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	WarningWindow time.Duration `mapstructure:"warning_window" yaml:"warning_window"`
	RefreshSkew   time.Duration `mapstructure:"refresh_skew" yaml:"refresh_skew"`
}

// Loader wraps Viper configuration loading for proxyman.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with standard defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("PROXYMAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/proxyman")
	v.AddConfigPath("$HOME/.proxyman")

	return &Loader{v: v}
}

// Viper exposes the underlying Viper instance for flag binding and defaults.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration and unmarshals it into a Config struct.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
