package departementstore_test

import (
	"testing"
	"time"

	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_FindCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := departementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	now := time.Now().UTC()

	_, _ = store.Create(ctx, models.Departement{
		ProfileID:   pid,
		Departement: "Old",
		Period:      models.Period{Start: now.AddDate(-2, 0, 0), End: now.AddDate(-1, 0, 0)},
	})
	if _, err := store.FindCurrent(ctx, pid, now); err != departementstore.ErrNotFound {
		t.Fatalf("expired record should not count, got %v", err)
	}

	_, err := store.Create(ctx, models.Departement{
		ProfileID:   pid,
		Departement: "Research",
		Period:      models.Period{Start: now.AddDate(0, -1, 0), End: now.AddDate(0, 6, 0)},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	d, err := store.FindCurrent(ctx, pid, now)
	if err != nil {
		t.Fatalf("FindCurrent failed: %v", err)
	}
	if d.Departement != "Research" {
		t.Errorf("Departement: got %q, want Research", d.Departement)
	}

	n, err := store.Count(ctx, bson.M{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count: got %d, want 2", n)
	}
}
