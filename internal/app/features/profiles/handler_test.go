package profiles_test

import (
	"errors"
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/profiles"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/indexes"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profiles.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()
	if err := indexes.EnsureAll(ctx, db, logger); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	audit := auditlog.New(nil, logger, auditlog.Config{Auth: auditlog.Off, Admin: auditlog.Off})
	return profiles.NewHandler(db, audit, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func onNIM(r *http.Request, nim string, u *auth.SessionUser) *http.Request {
	return testutil.WithUser(testutil.WithChiURLParam(r, "nim", nim), u)
}

func TestHandleCreate(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := testutil.AdministratorUser()

	body := map[string]any{"nim": 2101, "full_name": "Siti Aminah", "class": "B", "semester": 5}
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/profile", body), admin))
	rec.AssertStatus(t, http.StatusCreated)
	var p models.Profile
	rec.DecodeData(t, &p)
	if p.Status != models.ProfileFree {
		t.Errorf("default status: got %q, want free", p.Status)
	}

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/profile", body), admin))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []map[string]any{
		{"full_name": "No NIM"},
		{"nim": 1, "full_name": "x", "email": "not-mail"},
		{"nim": 1, "full_name": "x", "avatar": "nope"},
		{"nim": 1, "full_name": "x", "status": "deleted"},
		{"nim": 1, "full_name": "x", "phone": "call me"},
	}
	for i, body := range cases {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/profile", body), testutil.AdministratorUser()))
		rec.AssertStatus(t, http.StatusBadRequest)
		if rec.ErrorCode() != "validation_failed" {
			t.Errorf("case %d: code %q", i, rec.ErrorCode())
		}
	}
}

func TestHandleUpdateMe_KeepsStatus(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, u := fx.CreateMember(ctx, 2102, "Budi", "budi")
	me := testutil.SessionUserFor(p, u, testutil.MemberUser().Roles)

	body := map[string]any{"full_name": "Budi Santoso", "avatar": "https://cdn.example.com/b.png", "status": "free"}
	rec := testutil.NewRecorder()
	h.HandleUpdateMe(rec, testutil.WithUser(testutil.NewJSONRequest("PUT", "/profile/me", body), me))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Profile
	rec.DecodeData(t, &got)
	if got.FullName != "Budi Santoso" || got.Avatar != "https://cdn.example.com/b.png" {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Status != models.ProfileActive {
		t.Errorf("status changed through /me: got %q", got.Status)
	}
}

func TestHandleUpdate_StatusDeletedCascades(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := fx.CreateMember(ctx, 2103, "Citra", "citra")

	body := map[string]any{"full_name": "Citra", "status": "deleted"}
	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, onNIM(testutil.NewJSONRequest("PUT", "/profile/2103", body), "2103", testutil.AdministratorUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Profile
	rec.DecodeData(t, &got)
	if got.Status != models.ProfileDeleted {
		t.Errorf("status: got %q", got.Status)
	}
	if _, err := userstore.New(h.DB).GetByProfileID(ctx, p.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("user should be gone, got err %v", err)
	}
}

func TestHandleDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, _ := fx.CreateMember(ctx, 2104, "Dewi", "dewi")

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, onNIM(testutil.NewRequest("DELETE", "/profile/2104"), "2104", testutil.AdministratorUser()))
	rec.AssertStatus(t, http.StatusOK)

	stored, err := h.Store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.ProfileDeleted {
		t.Errorf("status: got %q", stored.Status)
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, onNIM(testutil.NewRequest("DELETE", "/profile/9"), "9", testutil.AdministratorUser()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeList_SearchAndFilter(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateProfile(ctx, 3001, "Éka Putri", models.ProfileActive)
	fx.CreateProfile(ctx, 3002, "Eko Prasetyo", models.ProfileFree)
	fx.CreateProfile(ctx, 3003, "Fajar", models.ProfileActive)

	list := func(query string) []models.Profile {
		t.Helper()
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewRequest("GET", "/profile?"+query))
		rec.AssertStatus(t, http.StatusOK)
		var out []models.Profile
		rec.DecodeData(t, &out)
		return out
	}

	if got := list("search=eka"); len(got) != 1 || got[0].NIM != 3001 {
		t.Errorf("folded search: got %+v", got)
	}
	if got := list("search=3002"); len(got) != 1 || got[0].NIM != 3002 {
		t.Errorf("nim search: got %+v", got)
	}
	if got := list("filter=status:active"); len(got) != 2 {
		t.Errorf("status filter: got %d, want 2", len(got))
	}
}

func TestServeDetail(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateProfile(ctx, 3101, "Gita", models.ProfileActive)

	rec := testutil.NewRecorder()
	h.ServeDetail(rec, onNIM(testutil.NewRequest("GET", "/profile/3101"), "3101", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeDetail(rec, onNIM(testutil.NewRequest("GET", "/profile/abc"), "abc", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRoutes_Guards(t *testing.T) {
	h, _ := newTestHandler(t)
	router := profiles.Routes(h, auth.NewMiddleware(nil, zap.NewNop()))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/me"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("GET", "/"), testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("DELETE", "/1"), testutil.OrganizerUser("Ketua")))
	rec.AssertStatus(t, http.StatusForbidden)
}
