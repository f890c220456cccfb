package repository

import "errors"

// Cache errors
var (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable indicates the cache is unavailable.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// Factory errors
var (
	// ErrUnknownDriver indicates no opener is registered for the configured driver.
	ErrUnknownDriver = errors.New("unknown database driver")
)
