// internal/app/features/news/handler.go
package news

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	newsstore "github.com/dalemusser/himatika/internal/app/store/news"
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
	Store    *newsstore.Store
	Profiles *profilestore.Store
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    newsstore.New(db),
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
	DefaultSort:  "publishedAt",
	DefaultOrder: -1,
	SearchFields: []string{"title", "body", "tags"},
	FilterFields: map[string]string{
		"category":  "category.title",
		"tag":       "tags",
		"published": "published",
	},
}

type newsRequest struct {
	Title     string `json:"title"`
	MainImage string `json:"main_image"`
	Body      string `json:"body"`
	Category  struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"category"`
	Tags []string `json:"tags"`
}

func (r newsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.MainImage, is.URL),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Tags, validation.By(shared.NonEmptyStrings(50))),
	)
}

func (r newsRequest) toModel() models.News {
	return models.News{
		Title:     r.Title,
		MainImage: r.MainImage,
		Body:      htmlsanitize.Body(r.Body),
		Category:  models.Category{Title: r.Category.Title, Description: r.Category.Description},
		Tags:      r.Tags,
	}
}

type newsView struct {
	models.News
	Author  *models.ProfileSummary `json:"author,omitempty"`
	Related []models.NewsLink      `json:"related"`
}

func canSeeDrafts(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.HasOrganizerRole()
}

// ServeList handles GET /.
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
		h.ErrLog.LogServerError(w, r, "news list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeCategories handles GET /categories.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cats, err := h.Store.Categories(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news categories", err)
		return
	}
	httpx.OK(w, cats)
}

// ServeDetail handles GET /{slug}. The payload carries up to
// newsstore.RelatedLimit related items.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, newsstore.ErrNotFound) || (err == nil && !n.Published && !canSeeDrafts(r)) {
		httpx.NotFound(w, "news not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news detail: load", err)
		return
	}

	related, err := h.Store.Related(ctx, n, newsstore.RelatedLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news detail: related", err)
		return
	}
	view := newsView{News: n, Related: related}

	authors, err := h.Profiles.Summaries(ctx, []primitive.ObjectID{n.AuthorID})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news detail: load author", err)
		return
	}
	if a, ok := authors[n.AuthorID]; ok {
		view.Author = &a
	}
	httpx.OK(w, view)
}

// HandleCreate handles POST / (organizers).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	var req newsRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n := req.toModel()
	n.AuthorID = u.ProfileID
	created, err := h.Store.Create(ctx, n)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news create", err)
		return
	}
	httpx.Created(w, created)
}

// HandleUpdate handles PUT /{slug} (organizers).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Store.Update(ctx, chi.URLParam(r, "slug"), req.toModel())
	if errors.Is(err, newsstore.ErrNotFound) {
		httpx.NotFound(w, "news not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "news update", err)
		return
	}
	httpx.OK(w, updated)
}

// HandlePublish handles GET /{slug}/publish (organizers).
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Store.Publish(ctx, chi.URLParam(r, "slug"), h.Now())
	switch {
	case errors.Is(err, newsstore.ErrNotFound):
		httpx.NotFound(w, "news not found")
	case errors.Is(err, newsstore.ErrAlreadyPublished):
		httpx.BadRequest(w, err.Error())
	case err != nil:
		h.ErrLog.LogServerError(w, r, "news publish", err)
	default:
		httpx.OK(w, n)
	}
}
