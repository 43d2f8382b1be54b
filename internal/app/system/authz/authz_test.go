package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/himatika/internal/app/system/authz"
	administratorstore "github.com/dalemusser/himatika/internal/app/store/administrators"
	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	organizerstore "github.com/dalemusser/himatika/internal/app/store/organizers"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAdmins struct {
	role string
	err  error
}

func (f fakeAdmins) FindCurrentRole(context.Context, primitive.ObjectID, time.Time) (string, models.Period, error) {
	return f.role, models.Period{}, f.err
}

type fakeDeps struct {
	d   *models.Departement
	err error
}

func (f fakeDeps) FindCurrent(context.Context, primitive.ObjectID, time.Time) (*models.Departement, error) {
	return f.d, f.err
}

type fakeOrgs struct {
	o   *models.Organizer
	err error
}

func (f fakeOrgs) FindCurrentForProfile(context.Context, primitive.ObjectID, time.Time) (*models.Organizer, error) {
	return f.o, f.err
}

var (
	noAdmin = fakeAdmins{err: administratorstore.ErrNotFound}
	noDep   = fakeDeps{err: departementstore.ErrNotFound}
	noOrg   = fakeOrgs{err: organizerstore.ErrNotFound}
)

func TestFacts_NoRoles(t *testing.T) {
	r := authz.NewResolver(noAdmin, noDep, noOrg)
	f, err := r.Facts(context.Background(), primitive.NewObjectID(), time.Now())
	require.NoError(t, err)
	require.False(t, f.IsAdministrator())
	require.False(t, f.IsDepartement())
	require.False(t, f.HasOrganizerRole())
}

func TestFacts_Administrator(t *testing.T) {
	r := authz.NewResolver(fakeAdmins{role: "Chair"}, noDep, noOrg)
	f, err := r.Facts(context.Background(), primitive.NewObjectID(), time.Now())
	require.NoError(t, err)
	require.True(t, f.IsAdministrator())
	require.Equal(t, "Chair", f.Administrator.Role)
	require.True(t, f.HasOrganizerRole())
	require.False(t, f.IsDepartement())
}

func TestFacts_Departement(t *testing.T) {
	r := authz.NewResolver(noAdmin, fakeDeps{d: &models.Departement{Departement: "Research"}}, noOrg)
	f, err := r.Facts(context.Background(), primitive.NewObjectID(), time.Now())
	require.NoError(t, err)
	require.True(t, f.IsDepartement())
	require.True(t, f.HasOrganizerRole())
	require.Equal(t, "Research", f.Departement.Name)
}

func TestFacts_OrganizerPositions(t *testing.T) {
	pid := primitive.NewObjectID()

	daily := &models.Organizer{DailyManagement: []models.DailyManagement{{Position: "Ketua", ProfileID: pid}}}
	f, err := authz.NewResolver(noAdmin, noDep, fakeOrgs{o: daily}).Facts(context.Background(), pid, time.Now())
	require.NoError(t, err)
	require.True(t, f.HasOrganizerRole())
	require.False(t, f.IsDepartement(), "daily management is not a departement role")
	require.Equal(t, "Ketua", f.Organizer.Position)

	dept := &models.Organizer{Department: []models.Department{{Name: "Media", Members: []primitive.ObjectID{pid}}}}
	f, err = authz.NewResolver(noAdmin, noDep, fakeOrgs{o: dept}).Facts(context.Background(), pid, time.Now())
	require.NoError(t, err)
	require.True(t, f.IsDepartement())
	require.Equal(t, "Media", f.Organizer.MemberOf)
}

func TestFacts_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := authz.NewResolver(fakeAdmins{err: boom}, noDep, noOrg).Facts(context.Background(), primitive.NewObjectID(), time.Now())
	require.ErrorIs(t, err, boom)

	_, err = authz.NewResolver(noAdmin, noDep, fakeOrgs{err: boom}).Facts(context.Background(), primitive.NewObjectID(), time.Now())
	require.ErrorIs(t, err, boom)
}

func TestMongoResolver_PeriodBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	_, err := administratorstore.New(db).Create(ctx, models.Administrator{
		Members: []models.AdministratorMember{{Role: "Chair", ProfileID: pid}},
		Period:  models.Period{Start: end.AddDate(-1, 0, 0), End: end},
	})
	require.NoError(t, err)

	r := authz.NewMongoResolver(db)

	f, err := r.Facts(ctx, pid, end)
	require.NoError(t, err)
	require.True(t, f.IsAdministrator(), "period end is inclusive")

	f, err = r.Facts(ctx, pid, end.Add(time.Millisecond))
	require.NoError(t, err)
	require.False(t, f.IsAdministrator())
}
