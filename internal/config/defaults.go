package config

// Default values for optional configuration fields.
const (
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultSourceTimeoutSecs = 30.0
	DefaultFetchDelaySecs    = 1.0
	DefaultConcurrency       = 1
	DefaultImportDir         = "./stock_data"
)

func (c *Config) applyDefaults() {
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = DefaultSourceTimeoutSecs
	}

	if c.Sync.FetchDelaySeconds == 0 {
		c.Sync.FetchDelaySeconds = DefaultFetchDelaySecs
	}
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = DefaultConcurrency
	}

	if c.Importer.Dir == "" {
		c.Importer.Dir = DefaultImportDir
	}
}
