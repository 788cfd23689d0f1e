package config

import "time"

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = ".proxyman"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultSessionDirName is the session state directory name under the
	// config directory.
	DefaultSessionDirName = "session"
	// DefaultLogFileName is the default client log file name.
	DefaultLogFileName = "proxyman.log"

	// DefaultClientEndpoint is the default backend API endpoint.
	DefaultClientEndpoint = "http://localhost:81/api"
	// DefaultWarningWindow is how long before expiry the warning fires.
	DefaultWarningWindow = 5 * time.Minute
	// DefaultRefreshSkew is how long before expiry the proactive refresh runs.
	DefaultRefreshSkew = time.Minute
)
