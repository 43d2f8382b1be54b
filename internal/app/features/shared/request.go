// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validatable is a request body with ozzo-validation rules.
type Validatable interface {
	Validate() error
}

// DecodeValid decodes the JSON body into dst and runs its Validate method.
// It writes the 400 response itself and returns false on any failure.
func DecodeValid(w http.ResponseWriter, r *http.Request, dst Validatable) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.BadRequest(w, err.Error())
		return false
	}
	if err := dst.Validate(); err != nil {
		httpx.ValidationFailed(w, err)
		return false
	}
	return true
}

// ObjectIDParam parses the chi URL parameter name as an ObjectID. An
// unparsable id answers 404, since no document can carry it.
func ObjectIDParam(w http.ResponseWriter, r *http.Request, name, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httpx.NotFound(w, what+" not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// NIMParam parses the chi URL parameter name as a NIM.
func NIMParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	nim, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || nim <= 0 {
		httpx.NotFound(w, "profile not found")
		return 0, false
	}
	return nim, true
}
