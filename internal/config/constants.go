package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout = 15 * time.Second
	ShutdownTimeout    = 30 * time.Second
	SMTPDialTimeout    = 10 * time.Second

	// Upstream retry and circuit breaker
	DefaultRetryDelay            = 100 * time.Millisecond
	MaxRetryDelay                = 2 * time.Second
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Session timeouts
	SessionMaxAge = 30 * 24 * time.Hour
)

// Server defaults
const (
	DefaultPort                    = "8080"
	DefaultUpstreamURL             = "http://localhost:8787"
	DefaultUpstreamRetries         = 2
	DefaultCircuitBreakerThreshold = 5
	DefaultSendsPerMinute          = 30
	DefaultSendBurst               = 5
)

// Session configuration constants
const (
	// Session settings
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "grova-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; script-src 'self'"
)
