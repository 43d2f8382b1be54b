// internal/app/features/profiles/handler.go
package profiles

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *profilestore.Store
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    profilestore.New(db),
		AuditLog: audit,
	}
}

var listSpec = paging.Spec{
	SortFields: map[string]string{
		"nim":       "nim",
		"fullName":  "full_name_ci",
		"semester":  "semester",
		"createdAt": "created_at",
	},
	DefaultSort:   "nim",
	DefaultOrder:  1,
	SearchFields:  []string{"full_name_ci"},
	NumericSearch: "nim",
	FilterFields: map[string]string{
		"status":   "status",
		"semester": "semester",
		"class":    "class",
	},
}

// ServeList handles GET / (organizers).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	// full_name_ci is folded, so the search text must be too.
	p.Search = text.Fold(p.Search)
	filter := p.Apply(bson.M{}, listSpec)
	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, u.ProfileID)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "profile not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile me: load", err)
		return
	}
	httpx.OK(w, p)
}

// ServeDetail handles GET /{nim}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	nim, ok := shared.NIMParam(w, r, "nim")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByNIM(ctx, nim)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "profile not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile detail: load", err)
		return
	}
	httpx.OK(w, p)
}

// HandleCreate handles POST / (administrators).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	var req createRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p := models.Profile{NIM: req.NIM, Status: req.Status}
	req.apply(&p)
	created, err := h.Store.Create(ctx, p)
	if h.writeDupError(w, err) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile create", err)
		return
	}
	h.audit(r, audit.EventProfileCreated, u, created, nil)
	httpx.Created(w, created)
}

// HandleUpdateMe handles PUT /me: the caller's own personal fields.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	var req personalFields
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var p models.Profile
	req.apply(&p)
	err := h.Store.Update(ctx, u.ProfileID, p)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "profile not found")
		return
	}
	if h.writeDupError(w, err) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile update me", err)
		return
	}
	h.ServeMe(w, r)
}

// HandleUpdate handles PUT /{nim} (administrators). Setting status to
// deleted runs the deletion cascade.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	nim, ok := shared.NIMParam(w, r, "nim")
	if !ok {
		return
	}
	var req adminUpdateRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Store.GetByNIM(ctx, nim)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "profile not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile update: load", err)
		return
	}

	var p models.Profile
	req.apply(&p)
	err = h.Store.Update(ctx, current.ID, p)
	if h.writeDupError(w, err) {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile update", err)
		return
	}

	event := audit.EventProfileUpdated
	if req.Status != "" && req.Status != current.Status {
		if err := h.Store.SetStatus(ctx, current.ID, req.Status, h.Log); err != nil {
			h.ErrLog.LogServerError(w, r, "profile update: status", err)
			return
		}
		if req.Status == models.ProfileDeleted {
			event = audit.EventProfileDeleted
		}
	}
	updated, err := h.Store.GetByID(ctx, current.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile update: reload", err)
		return
	}
	h.audit(r, event, u, *updated, map[string]string{"status": updated.Status})
	httpx.OK(w, updated)
}

// HandleDelete handles DELETE /{nim} (administrators). The profile stays
// with status deleted; its user, session and every reference to it go.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	nim, ok := shared.NIMParam(w, r, "nim")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, err := h.Store.GetByNIM(ctx, nim)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "profile not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile delete: load", err)
		return
	}
	if err := h.Store.MarkDeleted(ctx, p.ID, h.Log); err != nil {
		h.ErrLog.LogServerError(w, r, "profile delete", err)
		return
	}
	h.audit(r, audit.EventProfileDeleted, u, *p, nil)
	httpx.Message(w, "profile deleted")
}

func (h *Handler) writeDupError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, profilestore.ErrDuplicateNIM), errors.Is(err, profilestore.ErrDuplicateMail):
		httpx.Conflict(w, err.Error())
		return true
	}
	return false
}

func (h *Handler) audit(r *http.Request, event string, actor *auth.SessionUser, p models.Profile, details map[string]string) {
	if h.AuditLog == nil || actor == nil {
		return
	}
	if details == nil {
		details = map[string]string{}
	}
	details["nim"] = strconv.FormatInt(p.NIM, 10)
	h.AuditLog.AdminAction(r.Context(), r, event, actor.ProfileID, p.ID, details)
}
