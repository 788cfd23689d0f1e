package config

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Client: ClientConfig{
			Endpoint: DefaultClientEndpoint,
			LogFile:  DefaultLogPath(),
		},
		Session: SessionConfig{
			Dir:           DefaultSessionDir(),
			WarningWindow: DefaultWarningWindow,
			RefreshSkew:   DefaultRefreshSkew,
		},
	}
}
