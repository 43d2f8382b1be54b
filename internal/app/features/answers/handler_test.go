package answers_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/himatika/internal/app/features/answers"
	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()
	h := answers.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	q, err := h.Store.CreateQuestion(ctx, models.Question{Title: "Q", Body: "b", AuthorID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	a, err := h.Store.AddAnswer(ctx, q.ID, models.Answer{Body: "a", AuthorID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("AddAnswer: %v", err)
	}

	u := testutil.MemberUser()
	voteAs := func(user *auth.SessionUser, id, kind string) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("POST", "/answers/"+id+"/vote", map[string]any{"voteType": kind})
		req = testutil.WithUser(testutil.WithChiURLParam(req, "id", id), user)
		rec := testutil.NewRecorder()
		h.HandleVote(rec, req)
		return rec
	}
	vote := func(id, kind string) *testutil.ResponseRecorder {
		return voteAs(u, id, kind)
	}

	steps := []struct {
		name string
		kind string
		want int
	}{
		{"first up", models.VoteUp, 1},
		{"same vote toggles off", models.VoteUp, 0},
		{"up again", models.VoteUp, 1},
		{"down flips", models.VoteDown, -1},
	}
	var got models.Answer
	for _, step := range steps {
		rec := vote(a.ID.Hex(), step.kind)
		rec.AssertStatus(t, http.StatusOK)
		rec.DecodeData(t, &got)
		if got.TotalVotes != step.want {
			t.Errorf("%s: total got %d, want %d", step.name, got.TotalVotes, step.want)
		}
	}
	if len(got.Votes) != 1 {
		t.Errorf("votes: got %d entries, want 1", len(got.Votes))
	}

	rec := voteAs(testutil.MemberUser(), a.ID.Hex(), models.VoteUp)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeData(t, &got)
	if got.TotalVotes != 0 {
		t.Errorf("second voter: total got %d, want 0", got.TotalVotes)
	}

	vote(primitive.NewObjectID().Hex(), models.VoteUp).AssertStatus(t, http.StatusNotFound)
	vote(a.ID.Hex(), "meh").AssertStatus(t, http.StatusBadRequest)
}
