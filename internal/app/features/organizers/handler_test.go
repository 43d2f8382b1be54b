package organizers_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/organizers"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*organizers.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audit := auditlog.New(nil, logger, auditlog.Config{Admin: auditlog.Off})
	return organizers.NewHandler(db, audit, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func chairman(position string, end time.Time) *auth.SessionUser {
	u := testutil.MemberUser()
	u.Roles.Organizer = &authz.OrganizerFact{
		ID:       primitive.NewObjectID(),
		Position: position,
		Period:   models.Period{Start: end.AddDate(-1, 0, 0), End: end},
	}
	return u
}

func TestMayHandOver(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		position string
		end      time.Time
		want     bool
	}{
		{"chairman inside window", "Ketua", now.Add(10 * 24 * time.Hour), true},
		{"chairman at window edge", "Leader", now.Add(organizers.HandoverWindow), true},
		{"chairman too early", "Chairman", now.Add(31 * 24 * time.Hour), false},
		{"not a chairman", "Sekretaris", now.Add(24 * time.Hour), false},
	}
	for _, tc := range cases {
		if got := organizers.MayHandOver(chairman(tc.position, tc.end), now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if organizers.MayHandOver(testutil.MemberUser(), now) {
		t.Error("member without organizer role may not hand over")
	}
}

func TestHandleCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ketua := fx.CreateProfile(ctx, 4001, "Ketua Baru", models.ProfileActive)
	koor := fx.CreateProfile(ctx, 4002, "Koordinator", models.ProfileActive)
	anggota := fx.CreateProfile(ctx, 4003, "Anggota", models.ProfileActive)

	now := time.Now().UTC()
	start := now.AddDate(0, 1, 0)
	body := map[string]any{
		"advisor":          map[string]any{"position": "Pembina", "name": "Dr. Rahma"},
		"daily_management": []map[string]any{{"position": "Ketua", "nim": 4001}},
		"department":       []map[string]any{{"name": "PSDM", "coordinator": 4002, "members": []int64{4003}}},
		"period":           map[string]any{"start": start, "end": start.AddDate(1, 0, 0)},
	}
	actor := chairman("Ketua", now.Add(7*24*time.Hour))

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/organizer", body), actor))
	rec.AssertStatus(t, http.StatusCreated)

	var o models.Organizer
	rec.DecodeData(t, &o)
	if o.PositionOf(ketua.ID) != "Ketua" {
		t.Errorf("daily management not resolved: %+v", o.DailyManagement)
	}
	if o.CoordinatorOf(koor.ID) != "PSDM" || o.MemberOf(anggota.ID) != "PSDM" {
		t.Errorf("department not resolved: %+v", o.Department)
	}
	if o.Advisor == nil || o.Advisor.Name != "Dr. Rahma" {
		t.Errorf("advisor: got %+v", o.Advisor)
	}
}

func TestHandleCreate_Rejections(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateProfile(ctx, 4101, "Someone", models.ProfileActive)

	now := time.Now().UTC()
	valid := func(nim int64) map[string]any {
		return map[string]any{
			"daily_management": []map[string]any{{"position": "Ketua", "nim": nim}},
			"period":           map[string]any{"start": now, "end": now.AddDate(1, 0, 0)},
		}
	}

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/organizer", valid(4101)), chairman("Ketua", now.AddDate(0, 3, 0))))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/organizer", valid(4101)), chairman("Bendahara", now.Add(time.Hour))))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/organizer", valid(9999)), chairman("Ketua", now.Add(time.Hour))))
	rec.AssertStatus(t, http.StatusBadRequest)

	backwards := valid(4101)
	backwards["period"] = map[string]any{"start": now, "end": now.AddDate(-1, 0, 0)}
	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/organizer", backwards), chairman("Ketua", now.Add(time.Hour))))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeCurrentAndList(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, 4201, "Current Chair", models.ProfileActive)
	fx.MakeOrganizer(ctx, p.ID, "Ketua", testutil.CurrentPeriod())
	fx.MakeOrganizer(ctx, primitive.NewObjectID(), "Ketua", testutil.PastPeriod())

	rec := testutil.NewRecorder()
	h.ServeCurrent(rec, testutil.NewRequest("GET", "/organizer/current"))
	rec.AssertStatus(t, http.StatusOK)
	var cur struct {
		models.Organizer
		Profiles map[string]models.ProfileSummary `json:"profiles"`
	}
	rec.DecodeData(t, &cur)
	if cur.PositionOf(p.ID) != "Ketua" {
		t.Errorf("current record: got %+v", cur.DailyManagement)
	}
	if s, ok := cur.Profiles[p.ID.Hex()]; !ok || s.NIM != 4201 {
		t.Errorf("profiles: got %+v", cur.Profiles)
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/organizer"))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Organizer
	rec.DecodeData(t, &list)
	if len(list) != 2 || !list[0].Period.End.After(list[1].Period.End) {
		t.Errorf("list should be newest period first: %+v", list)
	}
}

func TestServeCurrent_None(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeCurrent(rec, testutil.NewRequest("GET", "/organizer/current"))
	rec.AssertStatus(t, http.StatusNotFound)
}
