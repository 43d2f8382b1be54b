// internal/app/features/answers/handler.go
package answers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Store  *questionstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Store: questionstore.New(db)}
}

// HandleVote handles POST /{id}/vote with the same toggle rules as
// question votes.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	id, ok := shared.ObjectIDParam(w, r, "id", "answer")
	if !ok {
		return
	}
	var req shared.VoteRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.VoteAnswer(ctx, id, u.ProfileID, req.VoteType)
	if shared.WriteVoteError(w, err, "answer not found") {
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "answer vote", err)
		return
	}
	httpx.OK(w, a)
}
