// internal/app/features/posts/handler.go
package posts

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	poststore "github.com/dalemusser/himatika/internal/app/store/posts"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/htmlsanitize"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Store    *poststore.Store
	Profiles *profilestore.Store
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    poststore.New(db),
		Profiles: profilestore.New(db),
		Now:      time.Now,
	}
}

var listSpec = paging.Spec{
	SortFields: map[string]string{
		"title":       "title",
		"publishedAt": "published_at",
		"createdAt":   "created_at",
	},
	DefaultSort:  "createdAt",
	DefaultOrder: -1,
	SearchFields: []string{"title", "body"},
	FilterFields: map[string]string{
		"category":  "categories.title",
		"published": "published",
	},
}

type categoryInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c categoryInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Description, validation.Length(0, 500)),
	)
}

type postRequest struct {
	Title      string          `json:"title"`
	MainImage  string          `json:"main_image"`
	Body       string          `json:"body"`
	Categories []categoryInput `json:"categories"`
}

func (r postRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.MainImage, is.URL),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Categories),
	)
}

func (r postRequest) toModel() models.Post {
	cats := make([]models.Category, len(r.Categories))
	for i, c := range r.Categories {
		cats[i] = models.Category{Title: c.Title, Description: c.Description}
	}
	return models.Post{
		Title:      r.Title,
		MainImage:  r.MainImage,
		Body:       htmlsanitize.Body(r.Body),
		Categories: cats,
	}
}

type postView struct {
	models.Post
	Author *models.ProfileSummary `json:"author,omitempty"`
}

// canSeeDrafts reports whether the caller may see unpublished posts.
func canSeeDrafts(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.HasOrganizerRole()
}

// ServeList handles GET /. Unpublished posts are listed for organizers only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	base := bson.M{}
	if !canSeeDrafts(r) {
		base["published"] = true
	}
	filter := p.Apply(base, listSpec)

	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeDetail handles GET /{slug}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	post, err := h.Store.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, poststore.ErrNotFound) || (err == nil && !post.Published && !canSeeDrafts(r)) {
		httpx.NotFound(w, "post not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post detail: load", err)
		return
	}

	view := postView{Post: post}
	authors, err := h.Profiles.Summaries(ctx, []primitive.ObjectID{post.AuthorID})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post detail: load author", err)
		return
	}
	if a, ok := authors[post.AuthorID]; ok {
		view.Author = &a
	}
	httpx.OK(w, view)
}

// HandleCreate handles POST / (organizers). The caller becomes the author.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	var req postRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	post := req.toModel()
	post.AuthorID = u.ProfileID
	created, err := h.Store.Create(ctx, post)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post create", err)
		return
	}
	httpx.Created(w, created)
}

// HandleUpdate handles PUT /{slug} (organizers). A new title moves the
// post to a new slug, which the response carries.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Store.Update(ctx, chi.URLParam(r, "slug"), req.toModel())
	if errors.Is(err, poststore.ErrNotFound) {
		httpx.NotFound(w, "post not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "post update", err)
		return
	}
	httpx.OK(w, updated)
}

// HandleDelete handles DELETE /{slug} (organizers).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, chi.URLParam(r, "slug")); err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			httpx.NotFound(w, "post not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "post delete", err)
		return
	}
	httpx.Message(w, "post deleted")
}

// HandlePublish handles GET /{slug}/publish (organizers).
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	post, err := h.Store.Publish(ctx, chi.URLParam(r, "slug"), h.Now())
	switch {
	case errors.Is(err, poststore.ErrNotFound):
		httpx.NotFound(w, "post not found")
	case errors.Is(err, poststore.ErrAlreadyPublished):
		httpx.BadRequest(w, err.Error())
	case err != nil:
		h.ErrLog.LogServerError(w, r, "post publish", err)
	default:
		httpx.OK(w, post)
	}
}
