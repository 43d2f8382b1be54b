// internal/app/features/departements/handler.go
package departements

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *departementstore.Store
	Profiles *profilestore.Store
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    departementstore.New(db),
		Profiles: profilestore.New(db),
		AuditLog: audit,
	}
}

var listSpec = paging.Spec{
	SortFields:   map[string]string{"end": "period.end", "departement": "departement"},
	DefaultSort:  "end",
	DefaultOrder: -1,
	FilterFields: map[string]string{"departement": "departement"},
}

type departementRequest struct {
	NIM         int64              `json:"nim"`
	Departement string             `json:"departement"`
	Period      shared.PeriodInput `json:"period"`
}

func (r departementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NIM, validation.Required),
		validation.Field(&r.Departement, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Period),
	)
}

// ServeList handles GET /.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	filter := p.Apply(bson.M{}, listSpec)
	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "departement list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "departement list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// HandleCreate handles POST / (administrators and departements).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	var req departementRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByNIM(ctx, req.NIM)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, "no profile with this NIM")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "departement create: load profile", err)
		return
	}

	created, err := h.Store.Create(ctx, models.Departement{
		ProfileID:   p.ID,
		Departement: req.Departement,
		Period:      req.Period.Model(),
	})
	if errors.Is(err, departementstore.ErrBadPeriod) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "departement create", err)
		return
	}
	if h.AuditLog != nil && u != nil {
		h.AuditLog.AdminAction(r.Context(), r, audit.EventDepartementCreated, u.ProfileID, created.ID,
			map[string]string{"departement": created.Departement})
	}
	httpx.Created(w, created)
}
