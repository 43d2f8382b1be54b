// internal/app/features/config/handler.go
package config

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	siteconfigstore "github.com/dalemusser/himatika/internal/app/store/siteconfig"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *siteconfigstore.Store
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    siteconfigstore.New(db),
		AuditLog: audit,
	}
}

type configRequest struct {
	DailyManagements []string `json:"daily_managements"`
	Departments      []string `json:"departments"`
}

func (r configRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DailyManagements, validation.Required, validation.By(shared.NonEmptyStrings(100))),
		validation.Field(&r.Departments, validation.By(shared.NonEmptyStrings(100))),
	)
}

// ServeLatest handles GET /.
func (h *Handler) ServeLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Latest(ctx)
	if errors.Is(err, siteconfigstore.ErrNotFound) {
		httpx.NotFound(w, "no config yet")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "config latest", err)
		return
	}
	httpx.OK(w, c)
}

// HandleCreate handles POST / (administrators). The new document becomes
// the latest; older ones are kept.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.Create(ctx, models.SiteConfig{
		DailyManagements: req.DailyManagements,
		Departments:      req.Departments,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "config create", err)
		return
	}
	if u, ok := auth.CurrentUser(r); ok && h.AuditLog != nil {
		h.AuditLog.AdminAction(r.Context(), r, audit.EventConfigCreated, u.ProfileID, c.ID, nil)
	}
	httpx.Created(w, c)
}
