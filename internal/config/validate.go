package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if c.Source.TimeoutSeconds < 0 {
		return errors.New("source.timeout_seconds must be >= 0")
	}

	if c.Sync.FetchDelaySeconds < 0 {
		return errors.New("sync.fetch_delay_seconds must be >= 0")
	}
	if c.Sync.Concurrency < 1 {
		return errors.New("sync.concurrency must be >= 1")
	}
	if c.Sync.AsOf != "" {
		if _, err := time.Parse(time.DateOnly, c.Sync.AsOf); err != nil {
			return fmt.Errorf("sync.as_of must be YYYY-MM-DD: %w", err)
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
