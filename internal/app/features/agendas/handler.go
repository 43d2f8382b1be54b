// internal/app/features/agendas/handler.go
package agendas

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/policy/eligibility"
	agendastore "github.com/dalemusser/himatika/internal/app/store/agendas"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/htmlsanitize"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves one of the agenda-shaped collections. The same code backs
// /agenda and /event; Kind names the resource in messages.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Kind     string
	Store    *agendastore.Store
	Profiles *profilestore.Store
	Now      func() time.Time
}

// NewHandler builds a handler over collection (agendastore.Agendas or
// agendastore.Events).
func NewHandler(db *mongo.Database, collection, kind string, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Kind:     kind,
		Store:    agendastore.New(db, collection),
		Profiles: profilestore.New(db),
		Now:      time.Now,
	}
}

var listSpec = paging.Spec{
	SortFields: map[string]string{
		"title":     "title",
		"date":      "date",
		"createdAt": "created_at",
	},
	DefaultSort:  "date",
	DefaultOrder: -1,
	SearchFields: []string{"title", "at", "description"},
	FilterFields: map[string]string{
		"canSee":      "can_see",
		"canRegister": "can_register",
	},
}

type agendaRequest struct {
	Title       string            `json:"title"`
	Date        time.Time         `json:"date"`
	At          string            `json:"at"`
	Description string            `json:"description"`
	CanSee      models.Role       `json:"can_see"`
	CanRegister models.Role       `json:"can_register"`
	Committee   []shared.JobInput `json:"committee"`
}

func (r agendaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Date, validation.Required),
		validation.Field(&r.At, validation.Length(0, 200)),
		validation.Field(&r.CanSee, validation.In(models.RoleValues()...)),
		validation.Field(&r.CanRegister, validation.In(models.RoleValues()...)),
		validation.Field(&r.Committee),
	)
}

// agendaView is the detail payload: the agenda plus summaries of every
// profile it references, keyed by id.
type agendaView struct {
	models.Agenda
	Profiles    map[string]models.ProfileSummary `json:"profiles"`
	MayRegister bool                             `json:"may_register"`
}

// toModel resolves committee NIMs and sanitizes the description.
func (h *Handler) toModel(ctx context.Context, req agendaRequest) (models.Agenda, error) {
	jobs, ids, err := shared.ResolveJobs(ctx, h.Profiles, req.Committee)
	if err != nil {
		return models.Agenda{}, err
	}
	committee := make([]models.Committee, len(ids))
	for i := range ids {
		committee[i] = models.Committee{Job: jobs[i], ProfileID: ids[i]}
	}
	return models.Agenda{
		Title:       req.Title,
		Date:        req.Date.UTC(),
		At:          req.At,
		Description: htmlsanitize.Sanitize(req.Description),
		CanSee:      req.CanSee,
		CanRegister: req.CanRegister,
		Committee:   committee,
	}, nil
}

// ServeList handles GET /. Only can_see values visible to the caller are
// listed.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	filter := p.Apply(agendastore.VisibleFilter(eligibility.VisibleRoles(auth.Actor(r))), listSpec)

	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeDetail handles GET /{id}. Agendas the caller may not see answer 404.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", h.Kind)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if errors.Is(err, agendastore.ErrNotFound) || (err == nil && !eligibility.CanSee(a.CanSee, auth.Actor(r))) {
		httpx.NotFound(w, h.Kind+" not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" detail: load", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(a.Committee)+len(a.Registered))
	for _, c := range a.Committee {
		ids = append(ids, c.ProfileID)
	}
	for _, reg := range a.Registered {
		ids = append(ids, reg.ProfileID)
	}
	profiles, err := shared.Summaries(ctx, h.Profiles, shared.ProfileIDs(ids))
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" detail: load profiles", err)
		return
	}

	view := agendaView{Agenda: a, Profiles: profiles}
	if u, ok := auth.CurrentUser(r); ok {
		view.MayRegister = shared.MayRegister(a.CanRegister, a.Date, h.Now(), u, false) &&
			!models.IsRegistered(a.Registered, u.ProfileID)
	}
	httpx.OK(w, view)
}

// HandleCreate handles POST / (organizers).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req agendaRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.toModel(ctx, req)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" create: resolve committee", err)
		return
	}
	created, err := h.Store.Create(ctx, a)
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" create: insert", err)
		return
	}
	httpx.Created(w, created)
}

// HandleUpdate handles PUT /{id} (organizers). Registrations are kept.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", h.Kind)
	if !ok {
		return
	}
	var req agendaRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.toModel(ctx, req)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" update: resolve committee", err)
		return
	}
	if err := h.Store.Update(ctx, id, a); err != nil {
		if errors.Is(err, agendastore.ErrNotFound) {
			httpx.NotFound(w, h.Kind+" not found")
			return
		}
		h.ErrLog.LogServerError(w, r, h.Kind+" update: write", err)
		return
	}
	updated, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" update: reload", err)
		return
	}
	httpx.OK(w, updated)
}

// HandleDelete handles DELETE /{id} (organizers).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", h.Kind)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, agendastore.ErrNotFound) {
			httpx.NotFound(w, h.Kind+" not found")
			return
		}
		h.ErrLog.LogServerError(w, r, h.Kind+" delete", err)
		return
	}
	httpx.Message(w, h.Kind+" deleted")
}

// HandleRegister handles POST /{id}/register. Registering twice is a no-op
// that still answers 200 with added=false.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	id, ok := shared.ObjectIDParam(w, r, "id", h.Kind)
	if !ok {
		return
	}
	var req shared.RegisterRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if errors.Is(err, agendastore.ErrNotFound) {
		httpx.NotFound(w, h.Kind+" not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" register: load", err)
		return
	}

	reg, onBehalf, err := shared.Registrant(ctx, h.Profiles, u, req)
	switch {
	case errors.Is(err, shared.ErrOnBehalfForbidden):
		httpx.Forbidden(w, err.Error())
		return
	case errors.Is(err, profilestore.ErrNotFound):
		httpx.NotFound(w, "no profile with this NIM")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, h.Kind+" register: resolve registrant", err)
		return
	}

	if !shared.MayRegister(a.CanRegister, a.Date, h.Now(), u, onBehalf) {
		httpx.Forbidden(w, "registration is closed for you")
		return
	}

	added, err := h.Store.Register(ctx, id, reg)
	if errors.Is(err, agendastore.ErrNotFound) {
		httpx.NotFound(w, h.Kind+" not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, h.Kind+" register: write", err)
		return
	}
	httpx.OK(w, map[string]any{"added": added, "profile_id": reg.ProfileID})
}
