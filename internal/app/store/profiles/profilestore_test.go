package profilestore_test

import (
	"testing"

	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/store/sessions"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create_DefaultsAndFold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Profile{NIM: 2019001, FullName: "Ayu Léstari"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.ProfileFree {
		t.Errorf("Status: got %q, want %q", created.Status, models.ProfileFree)
	}
	if created.FullNameCI != text.Fold("Ayu Léstari") {
		t.Errorf("FullNameCI: got %q, want %q", created.FullNameCI, text.Fold("Ayu Léstari"))
	}

	got, err := store.GetByNIM(ctx, 2019001)
	if err != nil {
		t.Fatalf("GetByNIM failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByNIM returned %v, want %v", got.ID, created.ID)
	}
}

func TestStore_Create_DuplicateNIM(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Profile{NIM: 1, FullName: "A", Email: "a@x.id"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Profile{NIM: 1, FullName: "B", Email: "b@x.id"}); err != profilestore.ErrDuplicateNIM {
		t.Errorf("expected ErrDuplicateNIM, got %v", err)
	}
	if _, err := store.Create(ctx, models.Profile{NIM: 2, FullName: "C", Email: "a@x.id"}); err != profilestore.ErrDuplicateMail {
		t.Errorf("expected ErrDuplicateMail, got %v", err)
	}
	// Empty emails are not covered by the unique index.
	if _, err := store.Create(ctx, models.Profile{NIM: 3, FullName: "D"}); err != nil {
		t.Errorf("first empty email: %v", err)
	}
	if _, err := store.Create(ctx, models.Profile{NIM: 4, FullName: "E"}); err != nil {
		t.Errorf("second empty email: %v", err)
	}
}

func TestStore_Claim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Profile{NIM: 10, FullName: "Free One"})
	if err := store.Claim(ctx, p.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Status != models.ProfileActive {
		t.Errorf("Status: got %q, want active", got.Status)
	}
	if err := store.Claim(ctx, p.ID); err != profilestore.ErrNotFree {
		t.Errorf("second Claim: expected ErrNotFree, got %v", err)
	}
}

func TestStore_IDsByNIM(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, models.Profile{NIM: 100, FullName: "A"})
	b, _ := store.Create(ctx, models.Profile{NIM: 200, FullName: "B"})

	ids, err := store.IDsByNIM(ctx, []int64{100, 200})
	if err != nil {
		t.Fatalf("IDsByNIM failed: %v", err)
	}
	if ids[100] != a.ID || ids[200] != b.ID {
		t.Errorf("IDsByNIM mismatch: %v", ids)
	}

	if _, err := store.IDsByNIM(ctx, []int64{100, 999}); err == nil {
		t.Error("expected error for unknown NIM")
	}
}

// A profile referenced by a project, an agenda and an event, with a user and
// a session, leaves no trace in any of them once marked deleted.
func TestStore_MarkDeleted_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	users := userstore.New(db)
	sess := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Profile{NIM: 42, FullName: "Leaving", Status: models.ProfileActive})
	other, _ := store.Create(ctx, models.Profile{NIM: 43, FullName: "Staying", Status: models.ProfileActive})

	u, err := users.Create(ctx, "leaving", "password1", p.ID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := sess.Upsert(ctx, sessions.Session{UserID: u.ID, TokenHash: "t", RefreshHash: "r"}); err != nil {
		t.Fatalf("upsert session: %v", err)
	}

	projectID := primitive.NewObjectID()
	_, _ = db.Collection("projects").InsertOne(ctx, bson.M{
		"_id":          projectID,
		"contributors": []bson.M{{"job": "lead", "profile_id": p.ID}, {"job": "dev", "profile_id": other.ID}},
		"registered":   []bson.M{{"profile_id": p.ID, "task": "x"}},
	})
	agendaID := primitive.NewObjectID()
	_, _ = db.Collection("agendas").InsertOne(ctx, bson.M{
		"_id":        agendaID,
		"committee":  []bson.M{{"job": "mc", "profile_id": p.ID}},
		"registered": []bson.M{{"profile_id": other.ID}},
	})
	eventID := primitive.NewObjectID()
	_, _ = db.Collection("events").InsertOne(ctx, bson.M{
		"_id":        eventID,
		"committee":  []bson.M{},
		"registered": []bson.M{{"profile_id": p.ID}},
	})

	if err := store.MarkDeleted(ctx, p.ID, zap.NewNop()); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}

	got, _ := store.GetByID(ctx, p.ID)
	if got.Status != models.ProfileDeleted {
		t.Errorf("Status: got %q, want deleted", got.Status)
	}

	for _, coll := range []string{"projects", "agendas", "events"} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{"$or": []bson.M{
			{"contributors.profile_id": p.ID},
			{"committee.profile_id": p.ID},
			{"registered.profile_id": p.ID},
		}})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s still references the deleted profile", coll)
		}
	}

	var project struct {
		Contributors []bson.M `bson:"contributors"`
	}
	_ = db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if len(project.Contributors) != 1 {
		t.Errorf("other contributor should remain, got %d", len(project.Contributors))
	}

	if _, err := users.GetByID(ctx, u.ID); err != userstore.ErrNotFound {
		t.Errorf("user should be deleted, got %v", err)
	}
	if _, err := sess.GetByUser(ctx, u.ID); err != sessions.ErrNotFound {
		t.Errorf("session should be deleted, got %v", err)
	}
}

func TestStore_MarkDeleted_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.MarkDeleted(ctx, primitive.NewObjectID(), nil); err != profilestore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := store.Create(ctx, models.Profile{NIM: 7, FullName: "S"})
	if err := store.SetStatus(ctx, p.ID, models.ProfileInactive, nil); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Status != models.ProfileInactive {
		t.Errorf("Status: got %q, want inactive", got.Status)
	}
}
