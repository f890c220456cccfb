package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/repository"
)

// Driver is the name this package registers under in repository.Factory.
const Driver = "postgres"

// Open connects to PostgreSQL, applies the embedded schema and builds the repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*repository.OpenResult, error) {
	db, err := NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate PostgreSQL database: %w", err)
	}

	return &repository.OpenResult{
		Repos: &repository.Repositories{
			User:     NewUserRepository(db),
			Category: NewCategoryRepository(db),
			Product:  NewProductRepository(db),
			Cart:     NewCartRepository(db),
		},
		Database: db,
	}, nil
}

var _ repository.Opener = Open
