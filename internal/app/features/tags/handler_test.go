package tags_test

import (
	"net/http"
	"reflect"
	"testing"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/tags"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.uber.org/zap"
)

func TestServeList_MergesSources(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()
	h := tags.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	if _, err := h.Questions.CreateQuestion(ctx, models.Question{Title: "q", Body: "b", Tags: []string{"go", "mongo"}}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if _, err := h.News.Create(ctx, models.News{Title: "n", Body: "b", Tags: []string{"lomba", "go"}}); err != nil {
		t.Fatalf("Create news: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/tags"))
	rec.AssertStatus(t, http.StatusOK)

	var got []string
	rec.DecodeData(t, &got)
	want := []string{"go", "lomba", "mongo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags: got %v, want %v", got, want)
	}
}
