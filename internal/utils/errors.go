package utils

import "errors"

// Common application errors used across services.
var (
	ErrMissingQuery       = errors.New("MISSING_QUERY")
	ErrInvalidSortBy      = errors.New("INVALID_SORT_BY")
	ErrNoSourcesAvailable = errors.New("NO_SOURCES_AVAILABLE")
	ErrPlatformNotFound   = errors.New("PLATFORM_NOT_FOUND")
)
