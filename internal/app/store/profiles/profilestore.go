// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/himatika/internal/app/store/sessions"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/app/system/txn"
	"github.com/dalemusser/himatika/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrDuplicateNIM  = errors.New("a profile with this NIM already exists")
	ErrDuplicateMail = errors.New("a profile with this email already exists")
	// ErrNotFree is returned by Claim when the profile is not in the free state.
	ErrNotFree = errors.New("profile is not free")
)

// collections that hold profile references and must be cleaned when a
// profile is deleted, with the array fields to pull from.
var references = map[string][]string{
	"projects": {"contributors", "registered"},
	"agendas":  {"committee", "registered"},
	"events":   {"committee", "registered"},
}

type Store struct {
	db *mongo.Database
	c  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("profiles")}
}

// EnsureIndexes creates the unique NIM and email indexes plus the name
// index used for sorting.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "nim", Value: 1}},
			Options: options.Index().SetName("uniq_profiles_nim").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_profiles_email").SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_name"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_profiles_status"),
		},
	})
	return err
}

// Create inserts p. Status defaults to free.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.FullNameCI = text.Fold(p.FullName)
	if p.Status == "" {
		p.Status = models.ProfileFree
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Profile{}, mapDup(err)
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByNIM(ctx context.Context, nim int64) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"nim": nim})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IDsByNIM resolves NIMs to profile ids. Every NIM must exist; the first
// missing one is reported in the error.
func (s *Store) IDsByNIM(ctx context.Context, nims []int64) (map[int64]primitive.ObjectID, error) {
	out := make(map[int64]primitive.ObjectID, len(nims))
	if len(nims) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"nim": bson.M{"$in": nims}},
		options.Find().SetProjection(bson.M{"_id": 1, "nim": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID  primitive.ObjectID `bson:"_id"`
			NIM int64              `bson:"nim"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.NIM] = row.ID
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	for _, n := range nims {
		if _, ok := out[n]; !ok {
			return nil, fmt.Errorf("nim %d: %w", n, ErrNotFound)
		}
	}
	return out, nil
}

// Summaries loads the public subset of the given profiles keyed by id.
// Unknown ids are skipped.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ProfileSummary, error) {
	out := make(map[primitive.ObjectID]models.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"nim": 1, "full_name": 1, "avatar": 1, "class": 1, "semester": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.ProfileSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// Update replaces the personal fields of a profile. Status, NIM and
// timestamps other than updated_at are left alone.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Profile) error {
	set := bson.M{
		"full_name":    p.FullName,
		"full_name_ci": text.Fold(p.FullName),
		"avatar":       p.Avatar,
		"class":        p.Class,
		"semester":     p.Semester,
		"birth":        p.Birth,
		"sex":          p.Sex,
		"religion":     p.Religion,
		"citizen":      p.Citizen,
		"phone":        p.Phone,
		"email":        p.Email,
		"address":      p.Address,
		"updated_at":   time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return mapDup(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Claim moves a free profile to active. Used by self-registration.
func (s *Store) Claim(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ProfileFree},
		bson.M{"$set": bson.M{"status": models.ProfileActive, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFree
	}
	return nil
}

// SetStatus changes a profile's status. Moving to deleted runs the full
// cascade via MarkDeleted.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string, logger *zap.Logger) error {
	if status == models.ProfileDeleted {
		return s.MarkDeleted(ctx, id, logger)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDeleted sets the profile status to deleted and, in the same
// transaction, removes the profile from every committee, contributor and
// registrant list, deletes the linked user and that user's session.
// Without transaction support the steps run in order.
func (s *Store) MarkDeleted(ctx context.Context, id primitive.ObjectID, logger *zap.Logger) error {
	users := userstore.New(s.db)
	sess := sessions.New(s.db)

	return txn.Run(ctx, s.db.Client(), logger, func(ctx context.Context) error {
		res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
			"status":     models.ProfileDeleted,
			"updated_at": time.Now().UTC(),
		}})
		if err != nil {
			return fmt.Errorf("mark profile deleted: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}

		for coll, fields := range references {
			or := make([]bson.M, 0, len(fields))
			pull := bson.M{}
			for _, f := range fields {
				or = append(or, bson.M{f + ".profile_id": id})
				pull[f] = bson.M{"profile_id": id}
			}
			if _, err := s.db.Collection(coll).UpdateMany(ctx, bson.M{"$or": or}, bson.M{"$pull": pull}); err != nil {
				return fmt.Errorf("pull profile from %s: %w", coll, err)
			}
		}

		userID, err := users.DeleteByProfile(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if userID.IsZero() {
			return nil
		}
		if _, err := sess.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// Find returns profiles matching filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Profile, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of profiles matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

func mapDup(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if containsIndex(err, "uniq_profiles_email") {
		return ErrDuplicateMail
	}
	return ErrDuplicateNIM
}

func containsIndex(err error, name string) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, name) {
				return true
			}
		}
	}
	return strings.Contains(err.Error(), name)
}
