package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	mw := auth.NewMiddleware(nil, zap.NewNop())
	handler := mw.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if code := errorCode(t, rec); code != "unauthenticated" {
		t.Errorf("expected code unauthenticated, got %q", code)
	}
}

func TestRequireSignedIn_WithUser_Passes(t *testing.T) {
	mw := auth.NewMiddleware(nil, zap.NewNop())
	handler := mw.RequireSignedIn(okHandler())

	req := auth.WithTestUser(httptest.NewRequest("GET", "/session", nil), &auth.SessionUser{Username: "a"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireOrganizer(t *testing.T) {
	mw := auth.NewMiddleware(nil, zap.NewNop())
	handler := mw.RequireOrganizer(okHandler())

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"plain member", &auth.SessionUser{}, http.StatusForbidden},
		{"organizer", &auth.SessionUser{Roles: authz.Facts{Organizer: &authz.OrganizerFact{Position: "Ketua"}}}, http.StatusOK},
		{"administrator", &auth.SessionUser{Roles: authz.Facts{Administrator: &authz.AdministratorFact{Role: "Chair"}}}, http.StatusOK},
		{"departement", &auth.SessionUser{Roles: authz.Facts{Departement: &authz.DepartementFact{Name: "Research"}}}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/agenda", nil)
			if tc.user != nil {
				req = auth.WithTestUser(req, tc.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequireAdministrator(t *testing.T) {
	mw := auth.NewMiddleware(nil, zap.NewNop())
	handler := mw.RequireAdministrator(okHandler())

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"daily management only", &auth.SessionUser{Roles: authz.Facts{Organizer: &authz.OrganizerFact{Position: "Ketua"}}}, http.StatusForbidden},
		{"department member", &auth.SessionUser{Roles: authz.Facts{Organizer: &authz.OrganizerFact{MemberOf: "Media"}}}, http.StatusOK},
		{"administrator", &auth.SessionUser{Roles: authz.Facts{Administrator: &authz.AdministratorFact{Role: "Chair"}}}, http.StatusOK},
		{"departement", &auth.SessionUser{Roles: authz.Facts{Departement: &authz.DepartementFact{Name: "Research"}}}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/profile", nil)
			if tc.user != nil {
				req = auth.WithTestUser(req, tc.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestLoadSessionUser_NoToken_PassesThrough(t *testing.T) {
	mw := auth.NewMiddleware(nil, zap.NewNop())
	var sawUser bool
	handler := mw.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if sawUser {
		t.Error("expected no user in context")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := auth.BearerToken(req); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestActor_NilForAnonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if auth.Actor(req) != nil {
		t.Error("expected nil actor for anonymous request")
	}
	req = auth.WithTestUser(req, &auth.SessionUser{})
	if auth.Actor(req) == nil {
		t.Error("expected actor for signed-in request")
	}
}
