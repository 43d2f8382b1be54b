package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/himatika/internal/app/store/audit"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.SigninSuccess(ctx, req, primitive.NewObjectID(), "test")
	logger.Signout(ctx, req, primitive.NewObjectID())
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.Off, Admin: auditlog.Off})

	userID := primitive.NewObjectID()
	logger.SigninSuccess(ctx, httptest.NewRequest("POST", "/signin", nil), userID, "rina")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: auditlog.DB})

	userID := primitive.NewObjectID()
	req := httptest.NewRequest("POST", "/signin", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.SigninFailedWrongPassword(ctx, req, userID, "rina")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventSigninFailedWrongPassword || e.Success {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.IP != "203.0.113.9" {
		t.Errorf("IP: got %q", e.IP)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no zap output for 'db', got %d entries", logs.Len())
	}
}

func TestLogger_Log_ConfigLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A nil store is fine when nothing goes to the database.
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Admin: auditlog.Log})
	logger.AdminAction(ctx, httptest.NewRequest("DELETE", "/profile/1", nil),
		audit.EventProfileDeleted, primitive.NewObjectID(), primitive.NewObjectID(), map[string]string{"nim": "1"})

	if logs.Len() != 1 {
		t.Fatalf("expected 1 zap entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["event_type"] != audit.EventProfileDeleted {
		t.Errorf("event_type: got %v", fields["event_type"])
	}
	if _, ok := fields["detail_target_id"]; !ok {
		t.Error("expected target id detail")
	}
}

func TestIsValidSetting(t *testing.T) {
	for _, s := range []string{"all", "db", "log", "off"} {
		if !auditlog.IsValidSetting(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	if auditlog.IsValidSetting("sometimes") {
		t.Error("unexpected valid setting")
	}
}
