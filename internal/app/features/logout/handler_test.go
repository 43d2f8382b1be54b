package logout_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/logout"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/app/system/tokens"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionService, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	codec, err := tokens.NewCodec("test-token-secret-must-be-32-chars-long", "himatika-test")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc := auth.NewSessionService(db, codec, authz.NewMongoResolver(db), auth.SessionConfig{
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}, logger)
	audit := auditlog.New(nil, logger, auditlog.Config{Auth: auditlog.Off})

	return logout.NewHandler(svc, audit, uierrors.NewErrorLogger(logger), logger), svc, testutil.NewFixtures(t, db)
}

func TestServeSignout_DestroysSession(t *testing.T) {
	handler, svc, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, user := fixtures.CreateMember(ctx, 2022001, "Indah", "indah")
	pair, err := svc.CreateOrReplace(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateOrReplace: %v", err)
	}
	u, err := svc.Resolve(ctx, pair.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	req := testutil.WithUser(testutil.NewRequest("GET", "/signout"), u)
	rec := testutil.NewRecorder()
	handler.ServeSignout(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	if _, err := svc.Resolve(ctx, pair.Token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("token should no longer resolve, got err=%v", err)
	}

	// A second signout with the same token finds no session.
	rec = testutil.NewRecorder()
	handler.ServeSignout(rec, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeSignout_Anonymous(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	handler.ServeSignout(rec, testutil.NewRequest("GET", "/signout"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
