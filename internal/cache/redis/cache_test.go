package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/repository"
)

func TestNewCache_Prefix(t *testing.T) {
	require.Equal(t, "storefront:cache:product:1", NewCache(nil, "").key("cache:product:1"))
	require.Equal(t, "test:k", NewCache(nil, "test:").key("k"))
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 200 * time.Millisecond,
	})
	require.ErrorIs(t, err, repository.ErrCacheUnavailable)
}
