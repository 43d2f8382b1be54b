package questionstore_test

import (
	"errors"
	"testing"

	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVoteQuestion_ToggleAndFlip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := questionstore.New(db)
	q, err := store.CreateQuestion(ctx, models.Question{Title: "How?", Body: "b", AuthorID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	steps := []struct {
		who   primitive.ObjectID
		vote  string
		total int
		n     int
	}{
		{alice, models.VoteUp, 1, 1},
		{bob, models.VoteUp, 2, 2},
		{alice, models.VoteDown, 0, 2}, // flip
		{alice, models.VoteDown, 1, 1}, // toggle off
		{bob, models.VoteUp, 0, 0},     // toggle off
	}
	for i, s := range steps {
		got, err := store.VoteQuestion(ctx, q.ID, s.who, s.vote)
		if err != nil {
			t.Fatalf("step %d: VoteQuestion failed: %v", i, err)
		}
		if got.TotalVotes != s.total || len(got.Votes) != s.n {
			t.Errorf("step %d: total=%d votes=%d, want total=%d votes=%d", i, got.TotalVotes, len(got.Votes), s.total, s.n)
		}
	}
}

func TestVote_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := questionstore.New(db)
	q, _ := store.CreateQuestion(ctx, models.Question{Title: "t"})

	if _, err := store.VoteQuestion(ctx, q.ID, primitive.NewObjectID(), "sideways"); !errors.Is(err, questionstore.ErrVoteType) {
		t.Errorf("expected ErrVoteType, got %v", err)
	}
	if _, err := store.VoteQuestion(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.VoteUp); !errors.Is(err, questionstore.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := store.VoteAnswer(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.VoteUp); !errors.Is(err, questionstore.ErrAnswerNotFound) {
		t.Errorf("expected ErrAnswerNotFound, got %v", err)
	}
}

func TestAnswers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := questionstore.New(db)
	q, _ := store.CreateQuestion(ctx, models.Question{Title: "Where?"})
	author := primitive.NewObjectID()

	a1, err := store.AddAnswer(ctx, q.ID, models.Answer{Body: "here", AuthorID: author})
	if err != nil {
		t.Fatalf("AddAnswer failed: %v", err)
	}
	a2, err := store.AddAnswer(ctx, q.ID, models.Answer{Body: "there", AuthorID: author})
	if err != nil {
		t.Fatalf("AddAnswer failed: %v", err)
	}
	if _, err := store.AddAnswer(ctx, primitive.NewObjectID(), models.Answer{Body: "x"}); !errors.Is(err, questionstore.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}

	if _, err := store.VoteAnswer(ctx, a2.ID, primitive.NewObjectID(), models.VoteUp); err != nil {
		t.Fatalf("VoteAnswer failed: %v", err)
	}
	list, err := store.AnswersFor(ctx, q.ID)
	if err != nil {
		t.Fatalf("AnswersFor failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != a2.ID {
		t.Errorf("expected voted answer first, got %+v", list)
	}

	got, err := store.UpdateAnswer(ctx, q.ID, a1.ID, "edited")
	if err != nil || got.Body != "edited" {
		t.Fatalf("UpdateAnswer: %+v %v", got, err)
	}

	if err := store.DeleteAnswer(ctx, q.ID, a1.ID); err != nil {
		t.Fatalf("DeleteAnswer failed: %v", err)
	}
	qq, _ := store.GetQuestion(ctx, q.ID)
	if len(qq.Answers) != 1 || qq.Answers[0] != a2.ID {
		t.Errorf("question answers: got %v", qq.Answers)
	}

	if err := store.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuestion failed: %v", err)
	}
	if _, err := store.GetAnswer(ctx, q.ID, a2.ID); !errors.Is(err, questionstore.ErrAnswerNotFound) {
		t.Errorf("answers should be removed with their question, got %v", err)
	}
}

func TestTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := questionstore.New(db)
	_, _ = store.CreateQuestion(ctx, models.Question{Title: "a", Tags: []string{"go", "mongo"}})
	_, _ = store.CreateQuestion(ctx, models.Question{Title: "b", Tags: []string{"go"}})

	tags, err := store.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "mongo" {
		t.Errorf("unexpected tags: %v", tags)
	}
}
