// internal/app/store/questions/questionstore.go
package questionstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// voteRetries bounds the compare-and-swap loop in vote.
const voteRetries = 5

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrVoteType         = errors.New("vote type must be upvote or downvote")
	ErrVoteContention   = errors.New("vote not recorded: too many concurrent updates")
)

// Store persists questions and their answers.
type Store struct {
	questions *mongo.Collection
	answers   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		questions: db.Collection("questions"),
		answers:   db.Collection("answers"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.questions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_questions_tags"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_questions_created"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("idx_questions_author"),
		},
	}); err != nil {
		return fmt.Errorf("questions: %w", err)
	}
	if _, err := s.answers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "question_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("idx_answers_question"),
	}); err != nil {
		return fmt.Errorf("answers: %w", err)
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Questions                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateQuestion(ctx context.Context, q models.Question) (models.Question, error) {
	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	if q.Tags == nil {
		q.Tags = []string{}
	}
	q.Votes = []models.Vote{}
	q.TotalVotes = 0
	q.Answers = []primitive.ObjectID{}
	q.CreatedAt, q.UpdatedAt = now, now
	if _, err := s.questions.InsertOne(ctx, q); err != nil {
		return models.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	if err := s.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, err
	}
	return q, nil
}

// UpdateQuestion replaces title, body and tags.
func (s *Store) UpdateQuestion(ctx context.Context, id primitive.ObjectID, title, body string, tags []string) (models.Question, error) {
	if tags == nil {
		tags = []string{}
	}
	res, err := s.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":      title,
		"body":       body,
		"tags":       tags,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return models.Question{}, fmt.Errorf("update question: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Question{}, ErrQuestionNotFound
	}
	return s.GetQuestion(ctx, id)
}

// DeleteQuestion removes the question and its answers.
func (s *Store) DeleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.questions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrQuestionNotFound
	}
	if _, err := s.answers.DeleteMany(ctx, bson.M{"question_id": id}); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	return nil
}

func (s *Store) FindQuestions(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Question, error) {
	cur, err := s.questions.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountQuestions(ctx context.Context, filter bson.M) (int64, error) {
	return s.questions.CountDocuments(ctx, filter)
}

// Tags returns the distinct question tags, sorted.
func (s *Store) Tags(ctx context.Context) ([]string, error) {
	vals, err := s.questions.Distinct(ctx, "tags", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if t, ok := v.(string); ok && t != "" {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

// VoteQuestion toggles or flips profileID's vote and returns the question
// with its recomputed total.
func (s *Store) VoteQuestion(ctx context.Context, id, profileID primitive.ObjectID, voteType string) (models.Question, error) {
	if err := s.vote(ctx, s.questions, id, profileID, voteType, ErrQuestionNotFound); err != nil {
		return models.Question{}, err
	}
	return s.GetQuestion(ctx, id)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Answers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// AddAnswer stores a and links it to its question.
func (s *Store) AddAnswer(ctx context.Context, questionID primitive.ObjectID, a models.Answer) (models.Answer, error) {
	if _, err := s.GetQuestion(ctx, questionID); err != nil {
		return models.Answer{}, err
	}
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.QuestionID = questionID
	a.Votes = []models.Vote{}
	a.TotalVotes = 0
	a.IsAccepted = false
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := s.answers.InsertOne(ctx, a); err != nil {
		return models.Answer{}, fmt.Errorf("insert answer: %w", err)
	}

	res, err := s.questions.UpdateOne(ctx, bson.M{"_id": questionID}, bson.M{
		"$push": bson.M{"answers": a.ID},
		"$set":  bson.M{"updated_at": now},
	})
	if err == nil && res.MatchedCount == 0 {
		err = ErrQuestionNotFound
	}
	if err != nil {
		// The question vanished between the check and the link.
		_, _ = s.answers.DeleteOne(ctx, bson.M{"_id": a.ID})
		return models.Answer{}, err
	}
	return a, nil
}

// GetAnswer returns the answer only when it belongs to questionID.
func (s *Store) GetAnswer(ctx context.Context, questionID, answerID primitive.ObjectID) (models.Answer, error) {
	filter := bson.M{"_id": answerID}
	if !questionID.IsZero() {
		filter["question_id"] = questionID
	}
	var a models.Answer
	if err := s.answers.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Answer{}, ErrAnswerNotFound
		}
		return models.Answer{}, err
	}
	return a, nil
}

// AnswersFor lists the answers of a question: accepted first, then by
// score, then oldest first.
func (s *Store) AnswersFor(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_accepted", Value: -1},
		{Key: "total_votes", Value: -1},
		{Key: "created_at", Value: 1},
	})
	cur, err := s.answers.Find(ctx, bson.M{"question_id": questionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Answer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateAnswer(ctx context.Context, questionID, answerID primitive.ObjectID, body string) (models.Answer, error) {
	res, err := s.answers.UpdateOne(ctx,
		bson.M{"_id": answerID, "question_id": questionID},
		bson.M{"$set": bson.M{"body": body, "updated_at": time.Now().UTC()}})
	if err != nil {
		return models.Answer{}, fmt.Errorf("update answer: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Answer{}, ErrAnswerNotFound
	}
	return s.GetAnswer(ctx, questionID, answerID)
}

// DeleteAnswer removes the answer and unlinks it from its question.
func (s *Store) DeleteAnswer(ctx context.Context, questionID, answerID primitive.ObjectID) error {
	res, err := s.answers.DeleteOne(ctx, bson.M{"_id": answerID, "question_id": questionID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrAnswerNotFound
	}
	_, err = s.questions.UpdateOne(ctx, bson.M{"_id": questionID}, bson.M{
		"$pull": bson.M{"answers": answerID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// VoteAnswer applies the same toggle rules as VoteQuestion.
func (s *Store) VoteAnswer(ctx context.Context, answerID, profileID primitive.ObjectID, voteType string) (models.Answer, error) {
	if err := s.vote(ctx, s.answers, answerID, profileID, voteType, ErrAnswerNotFound); err != nil {
		return models.Answer{}, err
	}
	return s.GetAnswer(ctx, primitive.NilObjectID, answerID)
}

// vote reads the current votes, applies the change and writes back only if
// nobody else changed the list in between.
func (s *Store) vote(ctx context.Context, c *mongo.Collection, id, profileID primitive.ObjectID, voteType string, notFound error) error {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return ErrVoteType
	}
	for i := 0; i < voteRetries; i++ {
		var doc struct {
			Votes []models.Vote `bson:"votes"`
		}
		err := c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"votes": 1})).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return notFound
			}
			return err
		}
		if doc.Votes == nil {
			doc.Votes = []models.Vote{}
		}

		votes, total := models.ApplyVote(doc.Votes, profileID, voteType)
		res, err := c.UpdateOne(ctx,
			bson.M{"_id": id, "votes": doc.Votes},
			bson.M{"$set": bson.M{"votes": votes, "total_votes": total, "updated_at": time.Now().UTC()}})
		if err != nil {
			return fmt.Errorf("record vote: %w", err)
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return ErrVoteContention
}
