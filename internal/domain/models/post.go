// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category labels a post or news item.
type Category struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
}

// Post is a blog article addressed by slug.
type Post struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	MainImage   string             `bson:"main_image" json:"main_image"`
	Body        string             `bson:"body" json:"body"`
	Categories  []Category         `bson:"categories" json:"categories"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Published   bool               `bson:"published" json:"published"`
	PublishedAt *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// News is a tagged announcement with a single category.
type News struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	MainImage   string             `bson:"main_image" json:"main_image"`
	Body        string             `bson:"body" json:"body"`
	Category    Category           `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Published   bool               `bson:"published" json:"published"`
	PublishedAt *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewsLink is the short form used for related news.
type NewsLink struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Slug  string             `bson:"slug" json:"slug"`
}
