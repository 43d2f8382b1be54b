package photos_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/photos"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/dalemusser/himatika/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *photos.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return photos.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
}

func TestCreateListDelete(t *testing.T) {
	h := newTestHandler(t)

	body := map[string]any{"title": "Makrab 2024", "image": "https://cdn.example.com/makrab.jpg"}
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/photo", body))
	rec.AssertStatus(t, http.StatusCreated)
	var p models.Photo
	rec.DecodeData(t, &p)

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/photo"))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Photo
	rec.DecodeData(t, &list)
	if len(list) != 1 || list[0].Title != "Makrab 2024" {
		t.Fatalf("list: got %+v", list)
	}

	del := testutil.WithChiURLParam(testutil.NewRequest("DELETE", "/photo/"+p.ID.Hex()), "id", p.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, del)
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, del)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleCreate_RequiresURL(t *testing.T) {
	h := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/photo", map[string]any{"title": "x", "image": "not a url"}))
	rec.AssertStatus(t, http.StatusBadRequest)
	if rec.ErrorCode() != "validation_failed" {
		t.Errorf("code: got %q", rec.ErrorCode())
	}
}

func TestRoutes_Guards(t *testing.T) {
	h := newTestHandler(t)
	router := photos.Routes(h, auth.NewMiddleware(nil, zap.NewNop()))
	id := primitive.NewObjectID().Hex()

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("DELETE", "/"+id))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest("DELETE", "/"+id), testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusOK)
}
