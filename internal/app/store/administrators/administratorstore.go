// internal/app/store/administrators/administratorstore.go
package administratorstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("administrator record not found")
	// ErrOverlap is returned by Create when an existing record lies inside
	// the new period.
	ErrOverlap = errors.New("an administrator record already exists within this period")
	// ErrBadPeriod is returned when the period ends before it starts.
	ErrBadPeriod = errors.New("period end must not be before start")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("administrators")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "members.profile_id", Value: 1}, {Key: "period.end", Value: -1}},
			Options: options.Index().SetName("idx_administrators_member_end"),
		},
		{
			Keys:    bson.D{{Key: "period.start", Value: 1}, {Key: "period.end", Value: 1}},
			Options: options.Index().SetName("idx_administrators_period"),
		},
	})
	return err
}

// FindCurrentRole returns the role profileID holds in the current
// administrator record with the latest period end.
func (s *Store) FindCurrentRole(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (string, models.Period, error) {
	filter := models.CurrentPeriodFilter(asOf)
	filter["members.profile_id"] = profileID

	var a models.Administrator
	err := s.c.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "period.end", Value: -1}})).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", models.Period{}, ErrNotFound
		}
		return "", models.Period{}, err
	}
	role, _ := a.RoleOf(profileID)
	return role, a.Period, nil
}

// Create inserts a new administrator record. It is rejected when an
// existing record starts at or after the new start and ends at or before
// the new end.
func (s *Store) Create(ctx context.Context, a models.Administrator) (models.Administrator, error) {
	if a.Period.End.Before(a.Period.Start) {
		return models.Administrator{}, ErrBadPeriod
	}
	n, err := s.c.CountDocuments(ctx, bson.M{
		"period.start": bson.M{"$gte": a.Period.Start},
		"period.end":   bson.M{"$lte": a.Period.End},
	}, options.Count().SetLimit(1))
	if err != nil {
		return models.Administrator{}, fmt.Errorf("check overlap: %w", err)
	}
	if n > 0 {
		return models.Administrator{}, ErrOverlap
	}
	a.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Administrator{}, fmt.Errorf("insert administrator: %w", err)
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Administrator, error) {
	var a models.Administrator
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Find returns administrator records matching filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Administrator, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Administrator
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
