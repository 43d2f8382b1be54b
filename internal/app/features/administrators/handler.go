// internal/app/features/administrators/handler.go
package administrators

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	administratorstore "github.com/dalemusser/himatika/internal/app/store/administrators"
	"github.com/dalemusser/himatika/internal/app/store/audit"
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
	Store    *administratorstore.Store
	Profiles *profilestore.Store
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    administratorstore.New(db),
		Profiles: profilestore.New(db),
		AuditLog: audit,
	}
}

var listSpec = paging.Spec{
	SortFields:   map[string]string{"end": "period.end", "start": "period.start"},
	DefaultSort:  "end",
	DefaultOrder: -1,
}

type memberInput struct {
	Role string `json:"role"`
	NIM  int64  `json:"nim"`
}

func (m memberInput) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Role, validation.Required),
		validation.Field(&m.NIM, validation.Required),
	)
}

type administratorRequest struct {
	Members []memberInput      `json:"members"`
	Period  shared.PeriodInput `json:"period"`
}

func (r administratorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Members, validation.Required),
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
		h.ErrLog.LogServerError(w, r, "administrator list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "administrator list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// HandleCreate handles POST / (administrators and departements).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	var req administratorRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	nims := make([]int64, 0, len(req.Members))
	for _, m := range req.Members {
		nims = append(nims, m.NIM)
	}
	ids, err := h.Profiles.IDsByNIM(ctx, nims)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "administrator create: resolve nims", err)
		return
	}

	a := models.Administrator{
		Members: make([]models.AdministratorMember, 0, len(req.Members)),
		Period:  req.Period.Model(),
	}
	for _, m := range req.Members {
		a.Members = append(a.Members, models.AdministratorMember{Role: m.Role, ProfileID: ids[m.NIM]})
	}

	created, err := h.Store.Create(ctx, a)
	if errors.Is(err, administratorstore.ErrOverlap) || errors.Is(err, administratorstore.ErrBadPeriod) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "administrator create", err)
		return
	}
	if h.AuditLog != nil && u != nil {
		h.AuditLog.AdminAction(r.Context(), r, audit.EventAdministratorCreated, u.ProfileID, created.ID, nil)
	}
	httpx.Created(w, created)
}
