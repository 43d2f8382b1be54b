package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher loads a user together with a live copy of its profile. The
// session service calls it on every authenticated request so profile edits
// and status changes take effect immediately.
type Fetcher struct {
	users    *mongo.Collection
	profiles *mongo.Collection
}

// NewFetcher creates a Fetcher over the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:    db.Collection("users"),
		profiles: db.Collection("profiles"),
	}
}

// FetchUser returns the user and its profile. ErrNotFound is returned when
// either document is missing.
func (f *Fetcher) FetchUser(ctx context.Context, userID primitive.ObjectID) (*models.User, *models.Profile, error) {
	var u models.User
	proj := options.FindOne().SetProjection(bson.M{"password_hash": 0})
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var p models.Profile
	if err := f.profiles.FindOne(ctx, bson.M{"_id": u.ProfileID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &u, &p, nil
}
