package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// SessionUserFor builds the signed-in actor for a stored profile and user.
func SessionUserFor(p models.Profile, u models.User, roles authz.Facts) *auth.SessionUser {
	return &auth.SessionUser{
		ID:        u.ID,
		Username:  u.Username,
		ProfileID: p.ID,
		NIM:       p.NIM,
		Name:      p.FullName,
		Status:    p.Status,
		Roles:     roles,
	}
}

// MemberUser is a signed-in user with no current role.
func MemberUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:        primitive.NewObjectID(),
		Username:  "member",
		ProfileID: primitive.NewObjectID(),
		NIM:       1000001,
		Name:      "Test Member",
		Status:    models.ProfileActive,
	}
}

// OrganizerUser is a signed-in user in the daily management of the current
// organizer record.
func OrganizerUser(position string) *auth.SessionUser {
	u := MemberUser()
	u.Username, u.Name, u.NIM = "organizer", "Test Organizer", 1000002
	u.Roles.Organizer = &authz.OrganizerFact{
		ID:       primitive.NewObjectID(),
		Period:   CurrentPeriod(),
		Position: position,
	}
	return u
}

// AdministratorUser is a signed-in user on the current administrator board.
func AdministratorUser() *auth.SessionUser {
	u := MemberUser()
	u.Username, u.Name, u.NIM = "admin", "Test Administrator", 1000003
	u.Roles.Administrator = &authz.AdministratorFact{Role: "Chair", Period: CurrentPeriod()}
	return u
}

// DepartementUser is a signed-in user with a current departement record.
func DepartementUser() *auth.SessionUser {
	u := MemberUser()
	u.Username, u.Name, u.NIM = "departement", "Test Departement", 1000004
	u.Roles.Departement = &authz.DepartementFact{Name: "PSDM", Period: CurrentPeriod()}
	return u
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, u *auth.SessionUser) *http.Request {
	if u == nil {
		return r
	}
	return auth.WithTestUser(r, u)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
// A string body is sent verbatim.
func NewJSONRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks the response body contains expected.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeData unmarshals the "data" member of a success response into v.
func (r *ResponseRecorder) DecodeData(t testing.TB, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (body: %s)", err, r.Body.String())
	}
}

// ErrorCode returns error.code from an error response, or "".
func (r *ResponseRecorder) ErrorCode() string {
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(r.Body.Bytes(), &env)
	return env.Error.Code
}
