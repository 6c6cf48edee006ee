// Package constants provides shared constants used throughout the emr codebase.
// This includes listener defaults, timeouts, limits and file permissions that
// should be consistent across the server and the CLI.
package constants

import "time"

// Listener defaults
const (
	// DefaultPort is the port the server binds when PORT is not set
	DefaultPort = 5000

	// DefaultAPIKey is the API key used when API_KEY is not set
	DefaultAPIKey = "default_api_key"

	// DefaultAuthHeader is the request header carrying the API key
	DefaultAuthHeader = "X-API-Key"

	// MaxPort is the highest valid TCP port
	MaxPort = 65535
)

// Timeout constants define the HTTP server timeouts
const (
	// DefaultReadTimeout bounds reading an entire request
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds writing a response
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout bounds keep-alive connections waiting for the next request
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests get to drain on shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

// Rate limiting constants
const (
	// RateLimitWindow is the fixed window rate limits are counted over
	RateLimitWindow = time.Minute

	// VisitorTTL is how long an idle client's rate limit state is kept
	VisitorTTL = 10 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Config file constants
const (
	// ConfigFileName is the base name of the optional config file
	ConfigFileName = ".emr"

	// ConfigFileType is the format of the optional config file
	ConfigFileType = "yaml"
)
