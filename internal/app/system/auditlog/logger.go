// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/himatika/internal/app/store/audit"
	"github.com/dalemusser/himatika/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for signin, signout, refresh and registration.
	Auth string
	// Admin controls logging for profile and role record changes.
	Admin string
}

// IsValidSetting reports whether s is one of all, db, log or off.
func IsValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) auth(ctx context.Context, r *http.Request, eventType string, userID *primitive.ObjectID, success bool, reason string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// --- Authentication Events ---

// SigninSuccess logs a successful signin.
func (l *Logger) SigninSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	l.auth(ctx, r, audit.EventSigninSuccess, &userID, true, "", map[string]string{"username": username})
}

// SigninFailedUserNotFound logs a signin for an unknown username.
func (l *Logger) SigninFailedUserNotFound(ctx context.Context, r *http.Request, attempted string) {
	l.auth(ctx, r, audit.EventSigninFailedUserNotFound, nil, false, "user not found",
		map[string]string{"attempted_username": attempted})
}

// SigninFailedWrongPassword logs a signin with a wrong password.
func (l *Logger) SigninFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	l.auth(ctx, r, audit.EventSigninFailedWrongPassword, &userID, false, "wrong password",
		map[string]string{"username": username})
}

// SigninFailedProfileInactive logs a signin rejected because the profile is
// not active. The user record is removed by the caller.
func (l *Logger) SigninFailedProfileInactive(ctx context.Context, r *http.Request, userID primitive.ObjectID, username, status string) {
	l.auth(ctx, r, audit.EventSigninFailedProfileInactive, &userID, false, "profile not active",
		map[string]string{"username": username, "profile_status": status})
}

// SigninFailedRateLimit logs a throttled signin.
func (l *Logger) SigninFailedRateLimit(ctx context.Context, r *http.Request, attempted string) {
	l.auth(ctx, r, audit.EventSigninFailedRateLimit, nil, false, "rate limit exceeded",
		map[string]string{"attempted_username": attempted})
}

// Signout logs a signout.
func (l *Logger) Signout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.auth(ctx, r, audit.EventSignout, &userID, true, "", nil)
}

// RefreshFailed logs a rejected refresh token.
func (l *Logger) RefreshFailed(ctx context.Context, r *http.Request) {
	l.auth(ctx, r, audit.EventRefreshFailed, nil, false, "invalid refresh token", nil)
}

// Registered logs a self-registration.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, username, nim string) {
	l.auth(ctx, r, audit.EventRegistered, &userID, true, "", map[string]string{"username": username, "nim": nim})
}

// --- Admin Events ---

// AdminAction logs a change made by actorID. target is the affected
// record, details are free-form.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, target primitive.ObjectID, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	if !target.IsZero() {
		details["target_id"] = target.Hex()
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}
