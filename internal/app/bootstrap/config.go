// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minProdSecret is the shortest token secret accepted when env is prod.
const minProdSecret = 32

const devTokenSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Himatika.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: HIMATIKA_MONGO_URI, HIMATIKA_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "himatika", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "token_secret", Default: devTokenSecret, Desc: "Token signing secret (at least 32 characters in production)"},
	{Name: "token_issuer", Default: "himatika", Desc: "Token issuer claim"},
	{Name: "access_token_ttl", Default: "10h", Desc: "Access token lifetime (e.g., 10h)"},
	{Name: "refresh_token_ttl", Default: "168h", Desc: "Refresh token lifetime (e.g., 168h)"},
	{Name: "session_cleanup_interval", Default: "1h", Desc: "How often expired sessions are purged"},

	// Signin throttling
	{Name: "signin_rate", Default: 10, Desc: "Signin attempts allowed per minute per client IP"},
	{Name: "signin_burst", Default: 5, Desc: "Signin burst size per client IP"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated list of origins allowed by CORS"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL of the API"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HIMATIKA_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HIMATIKA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret:     appValues.String("token_secret"),
		TokenIssuer:     appValues.String("token_issuer"),
		AccessTokenTTL:  appValues.Duration("access_token_ttl", 10*time.Hour),
		RefreshTokenTTL: appValues.Duration("refresh_token_ttl", 7*24*time.Hour),

		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", time.Hour),

		SigninRate:  float64(appValues.Int("signin_rate")),
		SigninBurst: appValues.Int("signin_burst"),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		BaseURL:            appValues.String("base_url"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

// validateApp checks the settings that do not depend on WAFFLE.
func validateApp(env string, appCfg AppConfig) error {
	var errs []error

	switch {
	case appCfg.TokenSecret == "":
		errs = append(errs, errors.New("token_secret is required"))
	case env == "prod" && len(appCfg.TokenSecret) < minProdSecret:
		errs = append(errs, fmt.Errorf("token_secret must be at least %d characters in prod", minProdSecret))
	case env == "prod" && appCfg.TokenSecret == devTokenSecret:
		errs = append(errs, errors.New("token_secret must be changed from the development default in prod"))
	}

	if appCfg.AccessTokenTTL <= 0 || appCfg.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	} else if appCfg.RefreshTokenTTL < appCfg.AccessTokenTTL {
		errs = append(errs, errors.New("refresh_token_ttl must not be shorter than access_token_ttl"))
	}

	if appCfg.SigninRate <= 0 || appCfg.SigninBurst <= 0 {
		errs = append(errs, errors.New("signin_rate and signin_burst must be positive"))
	}

	if !auditlog.IsValidSetting(appCfg.AuditLogAuth) {
		errs = append(errs, fmt.Errorf("audit_log_auth: unknown setting %q", appCfg.AuditLogAuth))
	}
	if !auditlog.IsValidSetting(appCfg.AuditLogAdmin) {
		errs = append(errs, fmt.Errorf("audit_log_admin: unknown setting %q", appCfg.AuditLogAdmin))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
