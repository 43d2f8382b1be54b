// internal/app/store/agendas/agendastore.go
package agendastore

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

// Collections served by this store. Events share the agenda shape.
const (
	Agendas = "agendas"
	Events  = "events"
)

var ErrNotFound = errors.New("agenda not found")

// Store persists agendas or events, depending on the collection it was
// built for.
type Store struct {
	c *mongo.Collection
}

// New returns a store over the named collection (Agendas or Events).
func New(db *mongo.Database, collection string) *Store {
	return &Store{c: db.Collection(collection)}
}

// Collection reports which collection the store writes to.
func (s *Store) Collection() string { return s.c.Name() }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	name := s.c.Name()
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "can_see", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_" + name + "_cansee_date"),
		},
		{
			Keys:    bson.D{{Key: "registered.profile_id", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_registered"),
		},
		{
			Keys:    bson.D{{Key: "committee.profile_id", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_committee"),
		},
	})
	return err
}

// Create inserts a. can_see defaults to All and can_register to No.
func (s *Store) Create(ctx context.Context, a models.Agenda) (models.Agenda, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CanSee = models.RoleOrDefault(a.CanSee, models.RoleAll)
	a.CanRegister = models.RoleOrDefault(a.CanRegister, models.RoleNo)
	if a.Committee == nil {
		a.Committee = []models.Committee{}
	}
	if a.Registered == nil {
		a.Registered = []models.Registered{}
	}
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Agenda{}, fmt.Errorf("insert %s: %w", s.c.Name(), err)
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Agenda, error) {
	var a models.Agenda
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Agenda{}, ErrNotFound
		}
		return models.Agenda{}, err
	}
	return a, nil
}

// Update replaces the editable fields of id. Registrations are kept.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, a models.Agenda) error {
	if a.Committee == nil {
		a.Committee = []models.Committee{}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":        a.Title,
		"date":         a.Date,
		"at":           a.At,
		"description":  a.Description,
		"can_see":      models.RoleOrDefault(a.CanSee, models.RoleAll),
		"can_register": models.RoleOrDefault(a.CanRegister, models.RoleNo),
		"committee":    a.Committee,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update %s: %w", s.c.Name(), err)
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

// Register adds reg to the agenda unless its profile is already listed.
// added is false when the profile was registered before.
func (s *Store) Register(ctx context.Context, id primitive.ObjectID, reg models.Registered) (added bool, err error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "registered.profile_id": bson.M{"$ne": reg.ProfileID}},
		bson.M{
			"$push": bson.M{"registered": reg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, fmt.Errorf("register on %s: %w", s.c.Name(), err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	// Either the agenda is missing or the profile is already registered.
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Find returns agendas matching filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Agenda, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Agenda
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// VisibleFilter restricts a listing to the given can_see values.
func VisibleFilter(roles []models.Role) bson.M {
	return bson.M{"can_see": bson.M{"$in": roles}}
}
