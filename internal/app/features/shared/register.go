package shared

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/himatika/internal/app/policy/eligibility"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

// ErrOnBehalfForbidden is returned when a non-organizer names a NIM.
var ErrOnBehalfForbidden = errors.New("only organizers can register another member")

// RegisterRequest is the body of POST /{id}/register on agendas, events
// and projects. NIM is optional.
type RegisterRequest struct {
	NIM  int64  `json:"nim"`
	Task string `json:"task"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NIM, validation.Min(int64(0))),
		validation.Field(&r.Task, validation.Length(0, 200)),
	)
}

// Registrant decides whose profile a registration is for. Organizers may
// name another member by NIM; everyone else registers themselves.
// onBehalf is true when the registrant is not the caller.
func Registrant(ctx context.Context, profiles *profilestore.Store, u *auth.SessionUser, req RegisterRequest) (reg models.Registered, onBehalf bool, err error) {
	reg = models.Registered{ProfileID: u.ProfileID, Task: req.Task}
	if req.NIM == 0 || req.NIM == u.NIM {
		return reg, false, nil
	}
	if !u.HasOrganizerRole() {
		return models.Registered{}, false, ErrOnBehalfForbidden
	}
	p, err := profiles.GetByNIM(ctx, req.NIM)
	if err != nil {
		return models.Registered{}, false, err
	}
	reg.ProfileID = p.ID
	return reg, true, nil
}

// MayRegister applies the registration predicate. An organizer acting on
// behalf of another member bypasses the role check, but registration
// closed with No or by the deadline stays closed.
func MayRegister(role models.Role, deadline time.Time, now time.Time, u *auth.SessionUser, onBehalf bool) bool {
	if onBehalf && role != models.RoleNo {
		role = models.RoleAll
	}
	var dl *time.Time
	if !deadline.IsZero() {
		dl = &deadline
	}
	return eligibility.CanRegister(role, dl, now, u)
}
