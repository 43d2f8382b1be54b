// internal/app/features/tags/handler.go
package tags

import (
	"context"
	"net/http"
	"sort"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	newsstore "github.com/dalemusser/himatika/internal/app/store/news"
	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Questions *questionstore.Store
	News      *newsstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Questions: questionstore.New(db),
		News:      newsstore.New(db),
	}
}

// ServeList handles GET /: every tag used by questions or news, sorted.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	qt, err := h.Questions.Tags(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tags: questions", err)
		return
	}
	nt, err := h.News.Tags(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tags: news", err)
		return
	}
	httpx.OK(w, merge(qt, nt))
}

func merge(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, l := range lists {
		for _, t := range l {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}
