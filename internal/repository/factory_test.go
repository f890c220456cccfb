package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/config"
)

func TestFactory_Open(t *testing.T) {
	want := &OpenResult{Repos: &Repositories{}}
	var gotPath string

	factory := NewFactory(config.DatabaseConfig{Driver: "sqlite", Path: "test.db"}, zerolog.Nop()).
		Register("sqlite", func(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*OpenResult, error) {
			gotPath = cfg.Path
			return want, nil
		})

	require.True(t, factory.IsEmbedded())

	got, err := factory.Open(context.Background())
	require.NoError(t, err)
	require.Same(t, want, got)
	require.Equal(t, "test.db", gotPath)
}

func TestFactory_UnknownDriver(t *testing.T) {
	factory := NewFactory(config.DatabaseConfig{Driver: "postgres"}, zerolog.Nop())

	_, err := factory.Open(context.Background())
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestFactory_OpenerError(t *testing.T) {
	boom := errors.New("connection refused")
	factory := NewFactory(config.DatabaseConfig{Driver: "postgres"}, zerolog.Nop()).
		Register("postgres", func(context.Context, config.DatabaseConfig, zerolog.Logger) (*OpenResult, error) {
			return nil, boom
		})

	_, err := factory.Open(context.Background())
	require.ErrorIs(t, err, boom)
}
