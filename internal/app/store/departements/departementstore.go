// internal/app/store/departements/departementstore.go
package departementstore

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
	ErrNotFound  = errors.New("departement record not found")
	ErrBadPeriod = errors.New("period end must not be before start")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("departements")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "period.end", Value: -1}},
		Options: options.Index().SetName("idx_departements_profile_end"),
	})
	return err
}

// FindCurrent returns the current departement record of profileID with the
// latest period end.
func (s *Store) FindCurrent(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (*models.Departement, error) {
	filter := models.CurrentPeriodFilter(asOf)
	filter["profile_id"] = profileID

	var d models.Departement
	err := s.c.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "period.end", Value: -1}})).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) Create(ctx context.Context, d models.Departement) (models.Departement, error) {
	if d.Period.End.Before(d.Period.Start) {
		return models.Departement{}, ErrBadPeriod
	}
	d.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Departement{}, fmt.Errorf("insert departement: %w", err)
	}
	return d, nil
}

// Find returns departement records matching filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Departement, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Departement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
