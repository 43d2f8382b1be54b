package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in actor injected into r.Context(). It merges
// the user, a live copy of the profile and the role facts computed for
// this request.
type SessionUser struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	ProfileID primitive.ObjectID `json:"profileId"`
	NIM       int64              `json:"nim"`
	Name      string             `json:"name"`
	Avatar    string             `json:"avatar,omitempty"`
	Status    string             `json:"status"`
	Roles     authz.Facts        `json:"roles"`

	// Token is the raw access token the request carried. Signout uses it.
	Token string `json:"-"`
}

// IsAdministrator reports a seat on the current administrator board.
func (u *SessionUser) IsAdministrator() bool { return u != nil && u.Roles.IsAdministrator() }

// IsDepartement reports a current departement role.
func (u *SessionUser) IsDepartement() bool { return u != nil && u.Roles.IsDepartement() }

// HasOrganizerRole reports any current organizing role.
func (u *SessionUser) HasOrganizerRole() bool { return u != nil && u.Roles.HasOrganizerRole() }

// CanAdminister reports whether the user may use administrator endpoints.
func (u *SessionUser) CanAdminister() bool { return u.IsAdministrator() || u.IsDepartement() }

// RoleHolder is the role view used by registration and visibility checks.
type RoleHolder interface {
	IsDepartement() bool
	HasOrganizerRole() bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// Actor returns the current user as a RoleHolder, or a nil interface for
// anonymous requests.
func Actor(r *http.Request) RoleHolder {
	if u, ok := CurrentUser(r); ok {
		return u
	}
	return nil
}

// WithTestUser returns a copy of r carrying u. Only tests should need it;
// production requests get their user from LoadSessionUser.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Middleware resolves bearer tokens and guards routes.
type Middleware struct {
	sessions *SessionService
	log      *zap.Logger
}

// NewMiddleware builds route guards over svc.
func NewMiddleware(svc *SessionService, logger *zap.Logger) *Middleware {
	return &Middleware{sessions: svc, log: logger}
}

// LoadSessionUser injects the user into context when the request carries a
// valid bearer token. It never rejects: anonymous requests pass through.
func (m *Middleware) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" || m == nil || m.sessions == nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := m.sessions.Resolve(r.Context(), raw)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) && m.log != nil {
				m.log.Warn("resolve session failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn answers 401 unless LoadSessionUser found a user.
func (m *Middleware) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpx.Unauthenticated(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOrganizer answers 401 for anonymous callers and 403 for users
// without a current organizing role.
func (m *Middleware) RequireOrganizer(next http.Handler) http.Handler {
	return m.require(func(u *SessionUser) bool { return u.HasOrganizerRole() }, next)
}

// RequireAdministrator answers 401 for anonymous callers and 403 unless
// the user holds an administrator or departement role.
func (m *Middleware) RequireAdministrator(next http.Handler) http.Handler {
	return m.require(func(u *SessionUser) bool { return u.CanAdminister() }, next)
}

func (m *Middleware) require(allowed func(*SessionUser) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			httpx.Unauthenticated(w, "")
			return
		}
		if !allowed(u) {
			httpx.Forbidden(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
