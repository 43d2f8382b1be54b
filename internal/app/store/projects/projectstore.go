// internal/app/store/projects/projectstore.go
package projectstore

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

var ErrNotFound = errors.New("project not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "can_see", Value: 1}, {Key: "deadline", Value: -1}},
			Options: options.Index().SetName("idx_projects_cansee_deadline"),
		},
		{
			Keys:    bson.D{{Key: "contributors.profile_id", Value: 1}},
			Options: options.Index().SetName("idx_projects_contributors"),
		},
		{
			Keys:    bson.D{{Key: "registered.profile_id", Value: 1}},
			Options: options.Index().SetName("idx_projects_registered"),
		},
	})
	return err
}

// Create inserts p with the same audience defaults as agendas.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CanSee = models.RoleOrDefault(p.CanSee, models.RoleAll)
	p.CanRegister = models.RoleOrDefault(p.CanRegister, models.RoleNo)
	if p.Contributors == nil {
		p.Contributors = []models.Contributor{}
	}
	if p.Tasks == nil {
		p.Tasks = []string{}
	}
	if p.Registered == nil {
		p.Registered = []models.Registered{}
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

// Update replaces the editable fields of id. Registrations are kept.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Project) error {
	if p.Contributors == nil {
		p.Contributors = []models.Contributor{}
	}
	if p.Tasks == nil {
		p.Tasks = []string{}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":        p.Title,
		"deadline":     p.Deadline,
		"description":  p.Description,
		"can_see":      models.RoleOrDefault(p.CanSee, models.RoleAll),
		"can_register": models.RoleOrDefault(p.CanRegister, models.RoleNo),
		"contributors": p.Contributors,
		"tasks":        p.Tasks,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Register adds reg unless its profile is already registered.
func (s *Store) Register(ctx context.Context, id primitive.ObjectID, reg models.Registered) (added bool, err error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "registered.profile_id": bson.M{"$ne": reg.ProfileID}},
		bson.M{
			"$push": bson.M{"registered": reg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, fmt.Errorf("register on project: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
