package config

import (
	"fmt"
	"strings"
)

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServiceConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServiceConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithTitleFormat sets the format used for titles derived from a display
// name. The format must contain exactly one %s verb.
func WithTitleFormat(format string) Option {
	return func(c *ServiceConfig) error {
		if format == "" {
			return fmt.Errorf("title format cannot be empty")
		}
		if strings.Count(format, "%s") != 1 {
			return fmt.Errorf("title format must contain exactly one %%s verb, got: %s", format)
		}
		c.TitleFormat = format
		return nil
	}
}

// WithDefaultTitle sets the title used when no display name is available
func WithDefaultTitle(title string) Option {
	return func(c *ServiceConfig) error {
		if title == "" {
			return fmt.Errorf("default title cannot be empty")
		}
		c.DefaultTitle = title
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServiceConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithDefaults is a convenience option that resets the configuration to
// library defaults. Useful as a base before applying more specific options.
func WithDefaults() Option {
	return func(c *ServiceConfig) error {
		*c = defaults()
		return nil
	}
}
