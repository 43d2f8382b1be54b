package testutil

import (
	"context"
	"testing"
	"time"

	administratorstore "github.com/dalemusser/himatika/internal/app/store/administrators"
	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	organizerstore "github.com/dalemusser/himatika/internal/app/store/organizers"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestPassword is the password every fixture user is created with.
const TestPassword = "correct horse battery"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CurrentPeriod is a period that started a month ago and ends in eleven
// months.
func CurrentPeriod() models.Period {
	now := time.Now().UTC()
	return models.Period{Start: now.AddDate(0, -1, 0), End: now.AddDate(0, 11, 0)}
}

// PastPeriod is a period that ended yesterday.
func PastPeriod() models.Period {
	now := time.Now().UTC()
	return models.Period{Start: now.AddDate(-1, 0, 0), End: now.AddDate(0, 0, -1)}
}

// CreateProfile inserts a profile with the given NIM, name and status.
func (f *Fixtures) CreateProfile(ctx context.Context, nim int64, name, status string) models.Profile {
	f.t.Helper()
	p, err := profilestore.New(f.db).Create(ctx, models.Profile{
		NIM:      nim,
		FullName: name,
		Class:    "A",
		Semester: 3,
		Status:   status,
	})
	if err != nil {
		f.t.Fatalf("CreateProfile(%d) failed: %v", nim, err)
	}
	return p
}

// CreateUser inserts a user with TestPassword for profileID.
func (f *Fixtures) CreateUser(ctx context.Context, username string, profileID primitive.ObjectID) models.User {
	f.t.Helper()
	u, err := userstore.New(f.db).Create(ctx, username, TestPassword, profileID)
	if err != nil {
		f.t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return u
}

// CreateMember inserts an active profile and a user for it.
func (f *Fixtures) CreateMember(ctx context.Context, nim int64, name, username string) (models.Profile, models.User) {
	f.t.Helper()
	p := f.CreateProfile(ctx, nim, name, models.ProfileActive)
	return p, f.CreateUser(ctx, username, p.ID)
}

// MakeOrganizer puts profileID in the daily management of a new organizer
// record for period.
func (f *Fixtures) MakeOrganizer(ctx context.Context, profileID primitive.ObjectID, position string, period models.Period) models.Organizer {
	f.t.Helper()
	o, err := organizerstore.New(f.db).Create(ctx, models.Organizer{
		DailyManagement: []models.DailyManagement{{Position: position, ProfileID: profileID}},
		Department:      []models.Department{},
		Period:          period,
	})
	if err != nil {
		f.t.Fatalf("MakeOrganizer failed: %v", err)
	}
	return o
}

// MakeAdministrator seats profileID on a new administrator board.
func (f *Fixtures) MakeAdministrator(ctx context.Context, profileID primitive.ObjectID, role string, period models.Period) models.Administrator {
	f.t.Helper()
	a, err := administratorstore.New(f.db).Create(ctx, models.Administrator{
		Members: []models.AdministratorMember{{Role: role, ProfileID: profileID}},
		Period:  period,
	})
	if err != nil {
		f.t.Fatalf("MakeAdministrator failed: %v", err)
	}
	return a
}

// MakeDepartement records a departement for profileID.
func (f *Fixtures) MakeDepartement(ctx context.Context, profileID primitive.ObjectID, name string, period models.Period) models.Departement {
	f.t.Helper()
	d, err := departementstore.New(f.db).Create(ctx, models.Departement{
		ProfileID:   profileID,
		Departement: name,
		Period:      period,
	})
	if err != nil {
		f.t.Fatalf("MakeDepartement failed: %v", err)
	}
	return d
}
