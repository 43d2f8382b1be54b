// internal/app/store/news/newsstore.go
package newsstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/himatika/internal/app/system/slug"
	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RelatedLimit is how many related items GetBySlug callers show.
const RelatedLimit = 3

var (
	ErrNotFound         = errors.New("news not found")
	ErrAlreadyPublished = errors.New("news already published")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("news")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_news_slug").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}, {Key: "published_at", Value: -1}},
			Options: options.Index().SetName("idx_news_published"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_news_tags"),
		},
		{
			Keys:    bson.D{{Key: "category.title", Value: 1}},
			Options: options.Index().SetName("idx_news_category"),
		},
	})
	return err
}

// Create inserts n unpublished under a slug derived from its title.
func (s *Store) Create(ctx context.Context, n models.News) (models.News, error) {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.Published = false
	n.PublishedAt = nil
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.CreatedAt, n.UpdatedAt = now, now

	sl, err := slug.Claim(slug.Make(n.Title), func(candidate string) error {
		n.Slug = candidate
		_, err := s.c.InsertOne(ctx, n)
		return err
	})
	if err != nil {
		return models.News{}, fmt.Errorf("insert news: %w", err)
	}
	n.Slug = sl
	return n, nil
}

func (s *Store) GetBySlug(ctx context.Context, sl string) (models.News, error) {
	var n models.News
	if err := s.c.FindOne(ctx, bson.M{"slug": sl}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.News{}, ErrNotFound
		}
		return models.News{}, err
	}
	return n, nil
}

// Update rewrites the content of the item at sl. A new title moves it to
// a new slug.
func (s *Store) Update(ctx context.Context, sl string, in models.News) (models.News, error) {
	cur, err := s.GetBySlug(ctx, sl)
	if err != nil {
		return models.News{}, err
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	set := bson.M{
		"title":      in.Title,
		"main_image": in.MainImage,
		"body":       in.Body,
		"category":   in.Category,
		"tags":       in.Tags,
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
		return models.News{}, fmt.Errorf("update news: %w", err)
	}
	return s.GetBySlug(ctx, newSlug)
}

// Publish marks the item published at now.
func (s *Store) Publish(ctx context.Context, sl string, now time.Time) (models.News, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"slug": sl, "published": false},
		bson.M{"$set": bson.M{"published": true, "published_at": now.UTC(), "updated_at": now.UTC()}})
	if err != nil {
		return models.News{}, fmt.Errorf("publish news: %w", err)
	}
	n, err := s.GetBySlug(ctx, sl)
	if err != nil {
		return models.News{}, err
	}
	if res.MatchedCount == 0 {
		return n, ErrAlreadyPublished
	}
	return n, nil
}

// Related returns up to limit other published items that share a tag or
// the exact title with n, newest first.
func (s *Store) Related(ctx context.Context, n models.News, limit int64) ([]models.NewsLink, error) {
	or := []bson.M{{"title": n.Title}}
	if len(n.Tags) > 0 {
		or = append(or, bson.M{"tags": bson.M{"$in": n.Tags}})
	}
	filter := bson.M{
		"_id":       bson.M{"$ne": n.ID},
		"published": true,
		"$or":       or,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"title": 1, "slug": 1})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.NewsLink{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns the distinct categories in use, ordered by title.
func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         "$category.title",
			"description": bson.M{"$first": "$category.description"},
		}}},
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$gt": ""}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Title       string `bson:"_id"`
		Description string `bson:"description"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Category{Title: r.Title, Description: r.Description})
	}
	return out, nil
}

// Tags returns the distinct tags used by news, sorted.
func (s *Store) Tags(ctx context.Context) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "tags", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if t, ok := v.(string); ok && t != "" {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.News, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.News
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
