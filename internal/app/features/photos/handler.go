// internal/app/features/photos/handler.go
package photos

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	photostore "github.com/dalemusser/himatika/internal/app/store/photos"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Store  *photostore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Store: photostore.New(db)}
}

var listSpec = paging.Spec{
	SortFields:   map[string]string{"title": "title", "createdAt": "created_at"},
	DefaultSort:  "createdAt",
	DefaultOrder: -1,
	SearchFields: []string{"title"},
}

type photoRequest struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

func (r photoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Image, validation.Required, is.URL),
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
		h.ErrLog.LogServerError(w, r, "photo list: count", err)
		return
	}
	items, err := h.Store.Find(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "photo list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// HandleCreate handles POST / (organizers).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.Create(ctx, models.Photo{Title: req.Title, Image: req.Image})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "photo create", err)
		return
	}
	httpx.Created(w, p)
}

// HandleDelete handles DELETE /{id} (organizers).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", "photo")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Store.Delete(ctx, id)
	if errors.Is(err, photostore.ErrNotFound) {
		httpx.NotFound(w, "photo not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "photo delete", err)
		return
	}
	httpx.Message(w, "photo deleted")
}
