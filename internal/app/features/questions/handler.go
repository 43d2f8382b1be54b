// internal/app/features/questions/handler.go
package questions

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
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
	Store    *questionstore.Store
	Profiles *profilestore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Store:    questionstore.New(db),
		Profiles: profilestore.New(db),
	}
}

var listSpec = paging.Spec{
	SortFields: map[string]string{
		"createdAt":  "created_at",
		"updatedAt":  "updated_at",
		"totalVotes": "total_votes",
	},
	DefaultSort:  "createdAt",
	DefaultOrder: -1,
	SearchFields: []string{"title", "body", "tags"},
	FilterFields: map[string]string{"tag": "tags"},
}

type questionRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

func (r questionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Tags, validation.By(shared.NonEmptyStrings(50))),
	)
}

type answerRequest struct {
	Body string `json:"body"`
}

func (r answerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required),
	)
}

type answerView struct {
	models.Answer
	Author *models.ProfileSummary `json:"author,omitempty"`
}

type questionView struct {
	models.Question
	Author      *models.ProfileSummary `json:"author,omitempty"`
	AnswerItems []answerView           `json:"answer_items"`
}

// ServeList handles GET /.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p := paging.Parse(r, listSpec)
	filter := p.Apply(bson.M{}, listSpec)
	total, err := h.Store.CountQuestions(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question list: count", err)
		return
	}
	items, err := h.Store.FindQuestions(ctx, filter, p.FindOptions())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question list: find", err)
		return
	}
	httpx.List(w, items, paging.NewMeta(p, total))
}

// ServeDetail handles GET /{id}: the question, its author and its answers.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.ObjectIDParam(w, r, "id", "question")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Store.GetQuestion(ctx, id)
	if errors.Is(err, questionstore.ErrQuestionNotFound) {
		httpx.NotFound(w, "question not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question detail: load", err)
		return
	}
	answers, err := h.Store.AnswersFor(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question detail: answers", err)
		return
	}

	ids := []primitive.ObjectID{q.AuthorID}
	for _, a := range answers {
		ids = append(ids, a.AuthorID)
	}
	authors, err := h.Profiles.Summaries(ctx, shared.ProfileIDs(ids))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question detail: authors", err)
		return
	}

	view := questionView{Question: q, AnswerItems: make([]answerView, 0, len(answers))}
	if a, ok := authors[q.AuthorID]; ok {
		view.Author = &a
	}
	for _, a := range answers {
		av := answerView{Answer: a}
		if s, ok := authors[a.AuthorID]; ok {
			av.Author = &s
		}
		view.AnswerItems = append(view.AnswerItems, av)
	}
	httpx.OK(w, view)
}

// HandleCreate handles POST / (signed in).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	var req questionRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Store.CreateQuestion(ctx, models.Question{
		Title:    req.Title,
		Body:     htmlsanitize.Body(req.Body),
		Tags:     req.Tags,
		AuthorID: u.ProfileID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question create", err)
		return
	}
	httpx.Created(w, q)
}

// loadOwnQuestion loads the question named by {id} and answers 403 unless
// the caller wrote it.
func (h *Handler) loadOwnQuestion(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Question, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return models.Question{}, false
	}
	id, ok := shared.ObjectIDParam(w, r, "id", "question")
	if !ok {
		return models.Question{}, false
	}
	q, err := h.Store.GetQuestion(ctx, id)
	if errors.Is(err, questionstore.ErrQuestionNotFound) {
		httpx.NotFound(w, "question not found")
		return models.Question{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question: load", err)
		return models.Question{}, false
	}
	if q.AuthorID != u.ProfileID {
		httpx.Forbidden(w, "only the author may change this question")
		return models.Question{}, false
	}
	return q, true
}

// HandleUpdate handles PUT /{id} (author).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, ok := h.loadOwnQuestion(ctx, w, r)
	if !ok {
		return
	}
	updated, err := h.Store.UpdateQuestion(ctx, q.ID, req.Title, htmlsanitize.Body(req.Body), req.Tags)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question update", err)
		return
	}
	httpx.OK(w, updated)
}

// HandleDelete handles DELETE /{id} (author). Answers go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, ok := h.loadOwnQuestion(ctx, w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteQuestion(ctx, q.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "question delete", err)
		return
	}
	httpx.Message(w, "question deleted")
}

// HandleVote handles POST /{id}/vote (signed in).
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	id, ok := shared.ObjectIDParam(w, r, "id", "question")
	if !ok {
		return
	}
	var req shared.VoteRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Store.VoteQuestion(ctx, id, u.ProfileID, req.VoteType)
	if shared.WriteVoteError(w, err, "question not found") {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question vote", err)
		return
	}
	httpx.OK(w, q)
}

// HandleAddAnswer handles POST /{id}/answers (signed in).
func (h *Handler) HandleAddAnswer(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	id, ok := shared.ObjectIDParam(w, r, "id", "question")
	if !ok {
		return
	}
	var req answerRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.AddAnswer(ctx, id, models.Answer{Body: htmlsanitize.Body(req.Body), AuthorID: u.ProfileID})
	if errors.Is(err, questionstore.ErrQuestionNotFound) {
		httpx.NotFound(w, "question not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "answer create", err)
		return
	}
	httpx.Created(w, a)
}

func (h *Handler) loadOwnAnswer(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Answer, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return models.Answer{}, false
	}
	qID, ok := shared.ObjectIDParam(w, r, "id", "question")
	if !ok {
		return models.Answer{}, false
	}
	aID, ok := shared.ObjectIDParam(w, r, "answerId", "answer")
	if !ok {
		return models.Answer{}, false
	}
	a, err := h.Store.GetAnswer(ctx, qID, aID)
	if errors.Is(err, questionstore.ErrAnswerNotFound) {
		httpx.NotFound(w, "answer not found")
		return models.Answer{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "answer: load", err)
		return models.Answer{}, false
	}
	if a.AuthorID != u.ProfileID {
		httpx.Forbidden(w, "only the author may change this answer")
		return models.Answer{}, false
	}
	return a, true
}

// HandleUpdateAnswer handles PUT /{id}/answers/{answerId} (answer author).
func (h *Handler) HandleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadOwnAnswer(ctx, w, r)
	if !ok {
		return
	}
	updated, err := h.Store.UpdateAnswer(ctx, a.QuestionID, a.ID, htmlsanitize.Body(req.Body))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "answer update", err)
		return
	}
	httpx.OK(w, updated)
}

// HandleDeleteAnswer handles DELETE /{id}/answers/{answerId} (answer author).
func (h *Handler) HandleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadOwnAnswer(ctx, w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteAnswer(ctx, a.QuestionID, a.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "answer delete", err)
		return
	}
	httpx.Message(w, "answer deleted")
}
