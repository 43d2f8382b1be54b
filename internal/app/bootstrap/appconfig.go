// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers the HTTP server, TLS and logging. AppConfig
// is everything specific to the membership API: the Mongo connection,
// token signing, signin throttling, CORS and audit logging.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	TokenSecret     string        // HS256 signing secret (at least 32 characters in prod)
	TokenIssuer     string        // iss claim stamped on and required of every token
	AccessTokenTTL  time.Duration // lifetime of access tokens
	RefreshTokenTTL time.Duration // lifetime of refresh tokens

	// Background session cleanup
	SessionCleanupInterval time.Duration

	// Signin throttling, per client IP
	SigninRate  float64 // attempts per minute
	SigninBurst int

	// Comma-separated origins allowed by CORS; empty disables CORS headers
	CORSAllowedOrigins []string

	// Public base URL of the API, used in log lines
	BaseURL string

	// Audit logging: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string
}
