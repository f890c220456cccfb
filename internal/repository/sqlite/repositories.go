package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/repository"
)

// Driver is the name this package registers under in repository.Factory.
const Driver = "sqlite"

// Open connects to SQLite, applies the embedded schema and builds the repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*repository.OpenResult, error) {
	db, err := NewDB(ctx, ConfigFromDatabase(cfg), logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &repository.OpenResult{
		Repos:    NewRepositories(db),
		Database: db,
	}, nil
}

// NewRepositories builds every repository on top of db.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:     NewUserRepository(db),
		Category: NewCategoryRepository(db),
		Product:  NewProductRepository(db),
		Cart:     NewCartRepository(db),
	}
}

var _ repository.Opener = Open
