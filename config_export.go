package proxyman

import "pkt.systems/proxyman/internal/config"

// Config mirrors the proxyman configuration.
type Config = config.Config

// ClientConfig configures backend connectivity and local files.
type ClientConfig = config.ClientConfig

// SessionConfig configures session persistence and timer windows.
type SessionConfig = config.SessionConfig

// Loader wraps configuration loading via Viper.
type Loader = config.Loader

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = config.DefaultConfigDirName
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = config.DefaultConfigFileName
	// DefaultSessionDirName is the session state directory name.
	DefaultSessionDirName = config.DefaultSessionDirName
	// DefaultLogFileName is the default client log file name.
	DefaultLogFileName = config.DefaultLogFileName

	// DefaultClientEndpoint is the default backend API endpoint.
	DefaultClientEndpoint = config.DefaultClientEndpoint
	// DefaultWarningWindow is how long before expiry the warning fires.
	DefaultWarningWindow = config.DefaultWarningWindow
	// DefaultRefreshSkew is how long before expiry the proactive refresh runs.
	DefaultRefreshSkew = config.DefaultRefreshSkew
)

// NewLoader returns a config loader with defaults wired.
func NewLoader() *config.Loader {
	return config.NewLoader()
}

// DefaultConfig returns default proxyman configuration.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	return config.DefaultConfigDir()
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return config.DefaultConfigPath()
}

// DefaultSessionDir returns the default session state directory.
func DefaultSessionDir() string {
	return config.DefaultSessionDir()
}

// DefaultLogPath returns the default client log file path.
func DefaultLogPath() string {
	return config.DefaultLogPath()
}
