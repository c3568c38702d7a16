package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glamkit/glamkit-favourites/pkg/favourites"
	"github.com/glamkit/glamkit-favourites/pkg/favourites/repo/memory"
	repopg "github.com/glamkit/glamkit-favourites/pkg/favourites/repo/postgres"
)

// Option applies configuration to a ServiceConfig instance.
type Option func(*ServiceConfig) error

// Load constructs a ServiceConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServiceConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServiceConfig {
	return ServiceConfig{
		DatabaseType:       "memory",
		DBSchema:           "favourites",
		TitleFormat:        favourites.DefaultTitleFormat,
		DefaultTitle:       favourites.DefaultListTitle,
		EnableEventLogging: true,
	}
}

// ServiceConfig represents configuration for the favourites service
type ServiceConfig struct {
	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: favourites)

	// Title generation
	TitleFormat  string // fmt verb for titles derived from a display name
	DefaultTitle string // title used when no display name is available

	// Service options
	EnableEventLogging bool
}

// Validate validates the service configuration
func (c *ServiceConfig) Validate() error {
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.TitleFormat == "" {
		return errors.New("title_format is required")
	}
	if c.DefaultTitle == "" {
		return errors.New("default_title is required")
	}

	return nil
}

// BuildService creates a Service instance from the configuration. The content
// registry is always supplied by the caller: kinds are application wiring,
// not deployment configuration. Extra options are appended after the
// configured ones so callers can override them.
func (c *ServiceConfig) BuildService(registry *favourites.Registry, extra ...favourites.Option) (favourites.Service, error) {
	var options []favourites.Option

	repo, err := c.BuildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, favourites.WithRepository(repo))
	options = append(options, favourites.WithRegistry(registry))

	options = append(options,
		favourites.WithTitleFormat(c.TitleFormat),
		favourites.WithDefaultTitle(c.DefaultTitle))

	if c.EnableEventLogging {
		options = append(options, favourites.WithEventSink(favourites.NewLoggingEventSink(slog.Default())))
	}

	options = append(options, extra...)

	return favourites.New(options...)
}

// BuildRepository creates a Repository based on the configuration
func (c *ServiceConfig) BuildRepository() (favourites.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
