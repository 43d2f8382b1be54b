// internal/app/store/organizers/organizerstore.go
package organizerstore

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
	ErrNotFound  = errors.New("organizer record not found")
	ErrBadPeriod = errors.New("period end must not be before start")
)

var latestFirst = bson.D{{Key: "period.end", Value: -1}}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizers")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "period.end", Value: -1}},
			Options: options.Index().SetName("idx_organizers_end"),
		},
		{
			Keys:    bson.D{{Key: "daily_management.profile_id", Value: 1}},
			Options: options.Index().SetName("idx_organizers_daily"),
		},
		{
			Keys:    bson.D{{Key: "department.coordinator", Value: 1}},
			Options: options.Index().SetName("idx_organizers_coordinator"),
		},
		{
			Keys:    bson.D{{Key: "department.members", Value: 1}},
			Options: options.Index().SetName("idx_organizers_members"),
		},
	})
	return err
}

// FindCurrentForProfile returns the current organizer record in which
// profileID sits in daily management or in a department.
func (s *Store) FindCurrentForProfile(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (*models.Organizer, error) {
	filter := models.CurrentPeriodFilter(asOf)
	filter["$or"] = []bson.M{
		{"daily_management.profile_id": profileID},
		{"department.coordinator": profileID},
		{"department.members": profileID},
	}
	return s.findOne(ctx, filter, latestFirst)
}

// Current returns the current organizer record with the latest period end.
func (s *Store) Current(ctx context.Context, asOf time.Time) (*models.Organizer, error) {
	return s.findOne(ctx, models.CurrentPeriodFilter(asOf), latestFirst)
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Organizer, error) {
	return s.findOne(ctx, bson.M{"_id": id}, nil)
}

func (s *Store) findOne(ctx context.Context, filter bson.M, sort bson.D) (*models.Organizer, error) {
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}
	var o models.Organizer
	if err := s.c.FindOne(ctx, filter, opts).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) Create(ctx context.Context, o models.Organizer) (models.Organizer, error) {
	if o.Period.End.Before(o.Period.Start) {
		return models.Organizer{}, ErrBadPeriod
	}
	o.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		return models.Organizer{}, fmt.Errorf("insert organizer: %w", err)
	}
	return o, nil
}

// Find returns organizer records matching filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Organizer, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Organizer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
