package sessions_test

import (
	"testing"
	"time"

	"github.com/dalemusser/himatika/internal/app/store/sessions"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSession(userID primitive.ObjectID, token, refresh string) sessions.Session {
	now := time.Now().UTC()
	return sessions.Session{
		UserID:           userID,
		TokenHash:        token,
		RefreshHash:      refresh,
		ExpiresAt:        now.Add(10 * time.Hour),
		RefreshExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func TestStore_Upsert_OneRowPerUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	userID := primitive.NewObjectID()
	if err := store.Upsert(ctx, newSession(userID, "a1", "r1")); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, newSession(userID, "a2", "r2")); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	n, err := store.CountByUser(ctx, userID)
	if err != nil {
		t.Fatalf("CountByUser failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 session row, got %d", n)
	}

	if _, err := store.GetByTokenHash(ctx, "a1"); err != sessions.ErrNotFound {
		t.Errorf("old token should be gone, got err=%v", err)
	}
	sess, err := store.GetByTokenHash(ctx, "a2")
	if err != nil {
		t.Fatalf("GetByTokenHash failed: %v", err)
	}
	if sess.UserID != userID {
		t.Errorf("UserID: got %v, want %v", sess.UserID, userID)
	}
	if sess.RefreshHash != "r2" {
		t.Errorf("RefreshHash: got %q, want %q", sess.RefreshHash, "r2")
	}
}

func TestStore_RotateAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Upsert(ctx, newSession(userID, "a1", "r1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	exp := time.Now().UTC().Add(time.Hour)
	if err := store.RotateAccess(ctx, "r1", "a9", exp); err != nil {
		t.Fatalf("RotateAccess failed: %v", err)
	}

	sess, err := store.GetByRefreshHash(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRefreshHash failed: %v", err)
	}
	if sess.TokenHash != "a9" {
		t.Errorf("TokenHash: got %q, want %q", sess.TokenHash, "a9")
	}

	if err := store.RotateAccess(ctx, "missing", "x", exp); err != sessions.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown refresh hash, got %v", err)
	}
}

func TestStore_DeleteByTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Upsert(ctx, newSession(userID, "a1", "r1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.DeleteByTokenHash(ctx, "a1"); err != nil {
		t.Fatalf("DeleteByTokenHash failed: %v", err)
	}
	if _, err := store.GetByUser(ctx, userID); err != sessions.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteByTokenHash(ctx, "a1"); err != sessions.ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_DeleteByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	_ = store.Upsert(ctx, newSession(userID, "a1", "r1"))
	_ = store.Upsert(ctx, newSession(other, "b1", "s1"))

	n, err := store.DeleteByUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteByUser failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	if _, err := store.GetByUser(ctx, other); err != nil {
		t.Errorf("other user's session should remain: %v", err)
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	live := primitive.NewObjectID()
	stale := primitive.NewObjectID()
	_ = store.Upsert(ctx, newSession(live, "a1", "r1"))

	old := newSession(stale, "b1", "s1")
	old.RefreshExpiresAt = time.Now().UTC().Add(-time.Minute)
	_ = store.Upsert(ctx, old)

	n, err := store.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	if _, err := store.GetByUser(ctx, live); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}
