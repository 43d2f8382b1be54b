// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Sessions *auth.SessionService
	AuditLog *auditlog.Logger
}

func NewHandler(sessions *auth.SessionService, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		ErrLog:   errLog,
		Sessions: sessions,
		AuditLog: audit,
	}
}

// ServeSignout handles GET /signout. It deletes the session that carries
// the request's access token.
func (h *Handler) ServeSignout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Sessions.Destroy(ctx, u.Token); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			httpx.Unauthenticated(w, "session already ended")
			return
		}
		h.ErrLog.LogServerError(w, r, "signout: destroy session", err)
		return
	}

	h.AuditLog.Signout(ctx, r, u.ID)
	httpx.NoCache(w)
	httpx.Message(w, "signed out")
}
