package siteconfigstore_test

import (
	"errors"
	"testing"

	siteconfigstore "github.com/dalemusser/himatika/internal/app/store/siteconfig"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
)

func TestLatest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := siteconfigstore.New(db)
	if _, err := store.Latest(ctx); !errors.Is(err, siteconfigstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty collection, got %v", err)
	}

	if _, err := store.Create(ctx, models.SiteConfig{Departments: []string{"PSDM"}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(ctx, models.SiteConfig{
		DailyManagements: []string{"Ketua", "Sekretaris"},
		Departments:      []string{"PSDM", "Kominfo"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got.ID != second.ID || len(got.Departments) != 2 {
		t.Errorf("expected newest config, got %+v", got)
	}
}
