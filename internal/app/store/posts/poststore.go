// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/himatika/internal/app/system/slug"
	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound         = errors.New("post not found")
	ErrAlreadyPublished = errors.New("post already published")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_posts_slug").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}, {Key: "published_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_published"),
		},
		{
			Keys:    bson.D{{Key: "categories.title", Value: 1}},
			Options: options.Index().SetName("idx_posts_categories"),
		},
	})
	return err
}

// Create inserts p unpublished. The slug comes from the title and gets a
// random suffix when another post already uses it.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Published = false
	p.PublishedAt = nil
	if p.Categories == nil {
		p.Categories = []models.Category{}
	}
	p.CreatedAt, p.UpdatedAt = now, now

	sl, err := slug.Claim(slug.Make(p.Title), func(candidate string) error {
		p.Slug = candidate
		_, err := s.c.InsertOne(ctx, p)
		return err
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	p.Slug = sl
	return p, nil
}

func (s *Store) GetBySlug(ctx context.Context, sl string) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"slug": sl}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}

// Update rewrites the content of the post at sl. A changed title moves the
// post to a new slug, which is returned with the updated post.
func (s *Store) Update(ctx context.Context, sl string, in models.Post) (models.Post, error) {
	cur, err := s.GetBySlug(ctx, sl)
	if err != nil {
		return models.Post{}, err
	}
	if in.Categories == nil {
		in.Categories = []models.Category{}
	}
	set := bson.M{
		"title":      in.Title,
		"main_image": in.MainImage,
		"body":       in.Body,
		"categories": in.Categories,
		"updated_at": time.Now().UTC(),
	}

	base := cur.Slug
	if in.Title != cur.Title {
		base = slug.Make(in.Title)
	}
	newSlug, err := slug.Claim(base, func(candidate string) error {
		set["slug"] = candidate
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": cur.ID}, bson.M{"$set": set})
		return err
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("update post: %w", err)
	}
	return s.GetBySlug(ctx, newSlug)
}

func (s *Store) Delete(ctx context.Context, sl string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"slug": sl})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Publish marks the post published at now. ErrAlreadyPublished is returned
// for a post that was published before.
func (s *Store) Publish(ctx context.Context, sl string, now time.Time) (models.Post, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"slug": sl, "published": false},
		bson.M{"$set": bson.M{"published": true, "published_at": now.UTC(), "updated_at": now.UTC()}})
	if err != nil {
		return models.Post{}, fmt.Errorf("publish post: %w", err)
	}
	p, err := s.GetBySlug(ctx, sl)
	if err != nil {
		return models.Post{}, err
	}
	if res.MatchedCount == 0 {
		return p, ErrAlreadyPublished
	}
	return p, nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Post, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
