// Package repository provides data access layer for Storefront.
// This file contains the factory that opens repositories based on configuration.
package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/config"
)

// Repositories holds all repository instances.
type Repositories struct {
	User     UserRepository
	Category CategoryRepository
	Product  ProductRepository
	Cart     CartRepository
}

// OpenResult contains the opened repositories and database connection.
type OpenResult struct {
	Repos    *Repositories
	Database DatabaseHealth
}

// Opener opens a database and builds its repositories.
// The postgres and sqlite packages each provide one.
type Opener func(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*OpenResult, error)

// Factory creates repositories based on configuration.
type Factory struct {
	cfg     config.DatabaseConfig
	logger  zerolog.Logger
	openers map[string]Opener
}

// NewFactory creates a new repository factory.
func NewFactory(cfg config.DatabaseConfig, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:     cfg,
		logger:  logger,
		openers: make(map[string]Opener),
	}
}

// Register associates a driver name with an opener.
func (f *Factory) Register(driver string, opener Opener) *Factory {
	f.openers[driver] = opener
	return f
}

// Driver returns the configured database driver.
func (f *Factory) Driver() string {
	return f.cfg.Driver
}

// IsEmbedded returns true if using embedded database.
func (f *Factory) IsEmbedded() bool {
	return f.cfg.IsEmbedded()
}

// Open opens the configured driver.
func (f *Factory) Open(ctx context.Context) (*OpenResult, error) {
	opener, ok := f.openers[f.cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, f.cfg.Driver)
	}

	result, err := opener(ctx, f.cfg, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s repositories: %w", f.cfg.Driver, err)
	}

	f.logger.Info().Str("driver", f.cfg.Driver).Msg("repositories ready")
	return result, nil
}
