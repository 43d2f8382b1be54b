// internal/app/store/siteconfig/siteconfigstore.go
package siteconfigstore

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

var ErrNotFound = errors.New("site config not found")

// Store keeps an append-only history of site configs. The newest one is
// authoritative.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_config")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_site_config_created"),
	})
	return err
}

// Latest returns the newest config, or ErrNotFound before any was created.
func (s *Store) Latest(ctx context.Context) (models.SiteConfig, error) {
	var c models.SiteConfig
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SiteConfig{}, ErrNotFound
		}
		return models.SiteConfig{}, err
	}
	return c, nil
}

// Create appends a new config, which becomes the latest.
func (s *Store) Create(ctx context.Context, c models.SiteConfig) (models.SiteConfig, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if c.DailyManagements == nil {
		c.DailyManagements = []string{}
	}
	if c.Departments == nil {
		c.Departments = []string{}
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.SiteConfig{}, fmt.Errorf("insert site config: %w", err)
	}
	return c, nil
}
