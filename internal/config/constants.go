package config

import "time"

// ServiceName is reported by /health and used as the default OTel service name.
const ServiceName = "culturology"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout  = 60 * time.Second
	ServerReadTimeout   = 15 * time.Second
	ServerWriteTimeout  = 90 * time.Second
	ShutdownGracePeriod = 30 * time.Second

	// AI provider
	AIRequestTimeout = 30 * time.Second
	// the http.Client timeout sits just above the per-request context deadline
	AIClientTimeoutSlack = 5 * time.Second
	AIBreakerOpenTimeout = 60 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	TestTimeout = 100 * time.Millisecond
)

// AI defaults
const (
	DefaultQuizMaxTokens           = 800
	DefaultChatMaxTokens           = 150
	DefaultAITemperature           = 0.7
	DefaultBreakerFailureThreshold = 5
)

// Server defaults
const (
	DefaultServerPort = "8000"
)

// Pagination defaults per resource
const (
	DefaultCultureListLimit   = 12
	DefaultCultureSearchLimit = 10
	DefaultQuizEntryLimit     = 20
	DefaultMediaLimit         = 20
	MaxPageLimit              = 100
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data: https:; media-src 'self' blob: data: https:;"
)
