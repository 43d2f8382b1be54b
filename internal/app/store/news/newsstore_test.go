package newsstore_test

import (
	"errors"
	"testing"
	"time"

	newsstore "github.com/dalemusser/himatika/internal/app/store/news"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
)

func TestRelated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := newsstore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	base := time.Now().UTC()
	publish := func(title string, tags []string, at time.Time) models.News {
		n, err := store.Create(ctx, models.News{Title: title, Tags: tags})
		if err != nil {
			t.Fatalf("Create %q failed: %v", title, err)
		}
		if _, err := store.Publish(ctx, n.Slug, at); err != nil {
			t.Fatalf("Publish %q failed: %v", title, err)
		}
		return n
	}

	main := publish("Main", []string{"go", "mongo"}, base)
	old := publish("Old Go", []string{"go"}, base.Add(-3*time.Hour))
	newer := publish("New Mongo", []string{"mongo"}, base.Add(-1*time.Hour))
	mid := publish("Mid Go", []string{"go"}, base.Add(-2*time.Hour))
	publish("Newest Go", []string{"go"}, base.Add(-30*time.Minute))
	_ = publish("Other", []string{"python"}, base)
	if _, err := store.Create(ctx, models.News{Title: "Draft", Tags: []string{"go"}}); err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	got, err := store.Related(ctx, main, newsstore.RelatedLimit)
	if err != nil {
		t.Fatalf("Related failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 related, got %d", len(got))
	}
	if got[1].ID != newer.ID || got[2].ID != mid.ID {
		t.Errorf("unexpected order: %+v", got)
	}
	for _, l := range got {
		if l.ID == main.ID || l.ID == old.ID {
			t.Errorf("unexpected related item %q", l.Title)
		}
	}
}

func TestCategoriesAndTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := newsstore.New(db)
	for _, n := range []models.News{
		{Title: "a", Category: models.Category{Title: "Kampus", Description: "campus"}, Tags: []string{"b", "a"}},
		{Title: "b", Category: models.Category{Title: "Kampus", Description: "campus"}, Tags: []string{"a"}},
		{Title: "c", Category: models.Category{Title: "Alumni"}, Tags: []string{"c"}},
	} {
		if _, err := store.Create(ctx, n); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	cats, err := store.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) != 2 || cats[0].Title != "Alumni" || cats[1].Title != "Kampus" || cats[1].Description != "campus" {
		t.Errorf("unexpected categories: %+v", cats)
	}

	tags, err := store.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 3 || tags[0] != "a" || tags[2] != "c" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestPublishAndUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := newsstore.New(db)
	n, _ := store.Create(ctx, models.News{Title: "Pengumuman"})
	if _, err := store.Publish(ctx, n.Slug, time.Now()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if _, err := store.Publish(ctx, n.Slug, time.Now()); !errors.Is(err, newsstore.ErrAlreadyPublished) {
		t.Errorf("expected ErrAlreadyPublished, got %v", err)
	}

	got, err := store.Update(ctx, n.Slug, models.News{Title: "Pengumuman Baru", Tags: []string{"info"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Slug != "pengumuman-baru" || !got.Published {
		t.Errorf("unexpected news after update: %+v", got)
	}
	if _, err := store.Update(ctx, "nope", models.News{Title: "x"}); !errors.Is(err, newsstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
