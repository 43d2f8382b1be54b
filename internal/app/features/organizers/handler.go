// internal/app/features/organizers/handler.go
package organizers

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	organizerstore "github.com/dalemusser/himatika/internal/app/store/organizers"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandoverWindow is how long before the current period ends its chairman
// may record the next organizer.
const HandoverWindow = 30 * 24 * time.Hour

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *organizerstore.Store
	Profiles *profilestore.Store
	AuditLog *auditlog.Logger
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    organizerstore.New(db),
		Profiles: profilestore.New(db),
		AuditLog: audit,
		Now:      time.Now,
	}
}

var listSpec = paging.Spec{
	SortFields:   map[string]string{"end": "period.end", "start": "period.start"},
	DefaultSort:  "end",
	DefaultOrder: -1,
}

// ServeList handles GET /: every record, newest period first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	filter := p.Apply(bson.M{}, listSpec)
	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeCurrent handles GET /current.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Store.Current(ctx, h.Now().UTC())
	if errors.Is(err, organizerstore.ErrNotFound) {
		httpx.NotFound(w, "no current organizer")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer current", err)
		return
	}

	ids := []primitive.ObjectID{}
	ids = append(ids, o.ConsiderationBoard...)
	for _, d := range o.DailyManagement {
		ids = append(ids, d.ProfileID)
	}
	for _, d := range o.Department {
		ids = append(ids, d.Coordinator)
		ids = append(ids, d.Members...)
	}
	profiles, err := shared.Summaries(ctx, h.Profiles, shared.ProfileIDs(ids))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer current: profiles", err)
		return
	}
	httpx.OK(w, struct {
		*models.Organizer
		Profiles map[string]models.ProfileSummary `json:"profiles"`
	}{o, profiles})
}

// MayHandOver reports whether u may record the next organizer at now: u
// must hold a chairman position in the current record and its period must
// end within HandoverWindow.
func MayHandOver(u *auth.SessionUser, now time.Time) bool {
	if u == nil || u.Roles.Organizer == nil {
		return false
	}
	fact := u.Roles.Organizer
	if !models.IsChairman(fact.Position) {
		return false
	}
	return !now.Before(fact.Period.End.Add(-HandoverWindow))
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	if !MayHandOver(u, h.Now().UTC()) {
		httpx.Forbidden(w, "only the current chairman may record the next organizer, within 30 days of the period end")
		return
	}
	var req organizerRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.Profiles.IDsByNIM(ctx, req.nims())
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer create: resolve nims", err)
		return
	}

	created, err := h.Store.Create(ctx, req.toModel(ids))
	if errors.Is(err, organizerstore.ErrBadPeriod) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "organizer create", err)
		return
	}
	if h.AuditLog != nil {
		h.AuditLog.AdminAction(r.Context(), r, audit.EventOrganizerCreated, u.ProfileID, created.ID, nil)
	}
	httpx.Created(w, created)
}
