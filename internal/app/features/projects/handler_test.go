package projects_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/projects"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return projects.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func seed(t *testing.T, h *projects.Handler, p models.Project) models.Project {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	created, err := h.Store.Create(ctx, p)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return created
}

func register(h *projects.Handler, p models.Project, u *auth.SessionUser, body any) *testutil.ResponseRecorder {
	req := testutil.NewJSONRequest("POST", "/project/"+p.ID.Hex()+"/register", body)
	req = testutil.WithChiURLParam(testutil.WithUser(req, u), "id", p.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleRegister(rec, req)
	return rec
}

func TestHandleCreate_AndDetail(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, 2024001, "Lina", models.ProfileActive)

	body := map[string]any{
		"title":        "Website",
		"deadline":     time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
		"description":  "<p>Build it</p><script>alert(1)</script>",
		"can_register": "All",
		"contributors": []map[string]any{{"job": "Lead", "nim": 2024001}},
		"tasks":        []string{"frontend", "backend"},
	}
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/project", body), testutil.OrganizerUser("Ketua")))
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Project
	rec.DecodeData(t, &created)
	if created.Description != "<p>Build it</p>" {
		t.Errorf("description not sanitized: %q", created.Description)
	}

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/project/"+created.ID.Hex()), "id", created.ID.Hex())
	req = testutil.WithUser(req, testutil.MemberUser())
	rec = testutil.NewRecorder()
	h.ServeDetail(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var view struct {
		Profiles    map[string]models.ProfileSummary `json:"profiles"`
		MayRegister bool                             `json:"may_register"`
	}
	rec.DecodeData(t, &view)
	if _, ok := view.Profiles[p.ID.Hex()]; !ok {
		t.Error("expected contributor summary in detail")
	}
	if !view.MayRegister {
		t.Error("member should be able to register before the deadline")
	}
}

func TestHandleRegister_DeadlineAndTask(t *testing.T) {
	h, _ := newTestHandler(t)

	open := seed(t, h, models.Project{
		Title:       "Open",
		Deadline:    time.Now().Add(24 * time.Hour),
		CanRegister: models.RoleAll,
		Tasks:       []string{"design"},
	})
	closed := seed(t, h, models.Project{
		Title:       "Closed",
		Deadline:    time.Now().Add(-24 * time.Hour),
		CanRegister: models.RoleAll,
	})
	u := testutil.MemberUser()

	register(h, closed, u, map[string]any{}).AssertStatus(t, http.StatusForbidden)
	register(h, open, u, map[string]any{"task": "catering"}).AssertStatus(t, http.StatusBadRequest)
	register(h, open, u, map[string]any{"task": "design"}).AssertStatus(t, http.StatusOK)
}

func TestHandleDelete(t *testing.T) {
	h, _ := newTestHandler(t)
	p := seed(t, h, models.Project{Title: "Old", Deadline: time.Now()})

	req := testutil.WithChiURLParam(testutil.NewRequest("DELETE", "/project/"+p.ID.Hex()), "id", p.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeList_HidesInternalFromMembers(t *testing.T) {
	h, _ := newTestHandler(t)
	seed(t, h, models.Project{Title: "Public", Deadline: time.Now(), CanSee: models.RoleAll})
	seed(t, h, models.Project{Title: "Internal", Deadline: time.Now(), CanSee: models.RoleInternal})

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest("GET", "/project"), testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusOK)
	var got []models.Project
	rec.DecodeData(t, &got)
	if len(got) != 1 || got[0].Title != "Public" {
		t.Errorf("got %+v, want only the public project", got)
	}
}
