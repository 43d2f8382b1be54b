// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Retention is how long a session row lives after it was written,
// independent of token expiry. Enforced by a TTL index on created_at.
const Retention = 7 * 24 * time.Hour

// ErrNotFound is returned when no session matches.
var ErrNotFound = errors.New("session not found")

// Session pairs the hashes of an access and a refresh token with a user.
// There is at most one row per user.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id"`

	TokenHash   string `bson:"token_hash"`
	RefreshHash string `bson:"refresh_hash"`

	ExpiresAt        time.Time `bson:"expires_at"`
	RefreshExpiresAt time.Time `bson:"refresh_expires_at"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store manages session rows.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the per-user unique index, the token lookup
// indexes and the retention TTL index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_sessions_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetName("idx_sessions_token"),
		},
		{
			Keys:    bson.D{{Key: "refresh_hash", Value: 1}},
			Options: options.Index().SetName("idx_sessions_refresh"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("ttl_sessions_created").SetExpireAfterSeconds(int32(Retention.Seconds())),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Upsert writes the single session row for userID, replacing any previous
// tokens. Concurrent calls for one user race and the last write wins.
func (s *Store) Upsert(ctx context.Context, sess Session) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": sess.UserID},
		bson.M{
			"$set": bson.M{
				"token_hash":         sess.TokenHash,
				"refresh_hash":       sess.RefreshHash,
				"expires_at":         sess.ExpiresAt,
				"refresh_expires_at": sess.RefreshExpiresAt,
				"created_at":         now,
				"updated_at":         now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByTokenHash finds the session holding the given access token hash.
func (s *Store) GetByTokenHash(ctx context.Context, hash string) (*Session, error) {
	return s.findOne(ctx, bson.M{"token_hash": hash})
}

// GetByRefreshHash finds the session holding the given refresh token hash.
func (s *Store) GetByRefreshHash(ctx context.Context, hash string) (*Session, error) {
	return s.findOne(ctx, bson.M{"refresh_hash": hash})
}

// GetByUser returns the session row for userID.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*Session, error) {
	return s.findOne(ctx, bson.M{"user_id": userID})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*Session, error) {
	var sess Session
	if err := s.c.FindOne(ctx, filter).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// RotateAccess stores a new access token hash on the session that holds
// refreshHash. The refresh token is left unchanged.
func (s *Store) RotateAccess(ctx context.Context, refreshHash, tokenHash string, expiresAt time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"refresh_hash": refreshHash},
		bson.M{"$set": bson.M{
			"token_hash": tokenHash,
			"expires_at": expiresAt,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTokenHash removes the session holding the access token hash.
func (s *Store) DeleteByTokenHash(ctx context.Context, hash string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"token_hash": hash})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes the session of userID, if any.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteExpired removes sessions whose refresh token expired before now.
// This backs up the TTL index, which only fires once per minute and only
// looks at created_at.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"refresh_expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByUser returns how many rows exist for userID. Always 0 or 1 once
// the unique index is in place.
func (s *Store) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}
