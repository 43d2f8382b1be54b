// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/app/policy/eligibility"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	projectstore "github.com/dalemusser/himatika/internal/app/store/projects"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/htmlsanitize"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *projectstore.Store
	Profiles *profilestore.Store
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    projectstore.New(db),
		Profiles: profilestore.New(db),
		Now:      time.Now,
	}
}

var listSpec = paging.Spec{
	SortFields: map[string]string{
		"title":     "title",
		"deadline":  "deadline",
		"createdAt": "created_at",
	},
	DefaultSort:  "deadline",
	DefaultOrder: -1,
	SearchFields: []string{"title", "description"},
	FilterFields: map[string]string{
		"canSee":      "can_see",
		"canRegister": "can_register",
	},
}

type projectRequest struct {
	Title        string            `json:"title"`
	Deadline     time.Time         `json:"deadline"`
	Description  string            `json:"description"`
	CanSee       models.Role       `json:"can_see"`
	CanRegister  models.Role       `json:"can_register"`
	Contributors []shared.JobInput `json:"contributors"`
	Tasks        []string          `json:"tasks"`
}

func (r projectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Deadline, validation.Required),
		validation.Field(&r.CanSee, validation.In(models.RoleValues()...)),
		validation.Field(&r.CanRegister, validation.In(models.RoleValues()...)),
		validation.Field(&r.Contributors),
		validation.Field(&r.Tasks, validation.By(shared.NonEmptyStrings(100))),
	)
}

type projectView struct {
	models.Project
	Profiles    map[string]models.ProfileSummary `json:"profiles"`
	MayRegister bool                             `json:"may_register"`
}

func (h *Handler) toModel(ctx context.Context, req projectRequest) (models.Project, error) {
	jobs, ids, err := shared.ResolveJobs(ctx, h.Profiles, req.Contributors)
	if err != nil {
		return models.Project{}, err
	}
	contributors := make([]models.Contributor, len(ids))
	for i := range ids {
		contributors[i] = models.Contributor{Job: jobs[i], ProfileID: ids[i]}
	}
	return models.Project{
		Title:        req.Title,
		Deadline:     req.Deadline.UTC(),
		Description:  htmlsanitize.Sanitize(req.Description),
		CanSee:       req.CanSee,
		CanRegister:  req.CanRegister,
		Contributors: contributors,
		Tasks:        req.Tasks,
	}, nil
}

// ServeList handles GET /.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	visible := bson.M{"can_see": bson.M{"$in": eligibility.VisibleRoles(auth.Actor(r))}}
	filter := p.Apply(visible, listSpec)

	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeDetail handles GET /{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	if errors.Is(err, projectstore.ErrNotFound) || (err == nil && !eligibility.CanSee(p.CanSee, auth.Actor(r))) {
		httpx.NotFound(w, "project not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project detail: load", err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(p.Contributors)+len(p.Registered))
	for _, c := range p.Contributors {
		ids = append(ids, c.ProfileID)
	}
	for _, reg := range p.Registered {
		ids = append(ids, reg.ProfileID)
	}
	profiles, err := shared.Summaries(ctx, h.Profiles, shared.ProfileIDs(ids))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project detail: load profiles", err)
		return
	}

	view := projectView{Project: p, Profiles: profiles}
	if u, ok := auth.CurrentUser(r); ok {
		view.MayRegister = shared.MayRegister(p.CanRegister, p.Deadline, h.Now(), u, false) &&
			!models.IsRegistered(p.Registered, u.ProfileID)
	}
	httpx.OK(w, view)
}

// HandleCreate handles POST / (organizers).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.toModel(ctx, req)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project create: resolve contributors", err)
		return
	}
	created, err := h.Store.Create(ctx, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project create: insert", err)
		return
	}
	httpx.Created(w, created)
}

// HandleUpdate handles PUT /{id} (organizers).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	var req projectRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.toModel(ctx, req)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project update: resolve contributors", err)
		return
	}
	if err := h.Store.Update(ctx, id, p); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpx.NotFound(w, "project not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "project update: write", err)
		return
	}
	updated, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project update: reload", err)
		return
	}
	httpx.OK(w, updated)
}

// HandleDelete handles DELETE /{id} (organizers).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpx.NotFound(w, "project not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "project delete", err)
		return
	}
	httpx.Message(w, "project deleted")
}

// HandleRegister handles POST /{id}/register. The deadline closes
// registration; a task, when given, must be one the project offers.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	id, ok := shared.ObjectIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	var req shared.RegisterRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	if errors.Is(err, projectstore.ErrNotFound) {
		httpx.NotFound(w, "project not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project register: load", err)
		return
	}
	if req.Task != "" && len(p.Tasks) > 0 && !slices.Contains(p.Tasks, req.Task) {
		httpx.BadRequest(w, "unknown task "+req.Task)
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
		h.ErrLog.LogServerError(w, r, "project register: resolve registrant", err)
		return
	}

	if !shared.MayRegister(p.CanRegister, p.Deadline, h.Now(), u, onBehalf) {
		httpx.Forbidden(w, "registration is closed for you")
		return
	}

	added, err := h.Store.Register(ctx, id, reg)
	if errors.Is(err, projectstore.ErrNotFound) {
		httpx.NotFound(w, "project not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "project register: write", err)
		return
	}
	httpx.OK(w, map[string]any{"added": added, "profile_id": reg.ProfileID})
}
