// internal/app/policy/eligibility/eligibility.go
package eligibility

import (
	"time"

	"github.com/dalemusser/himatika/internal/domain/models"
)

// Actor is what the policy needs to know about the caller. authz.Facts
// satisfies it.
type Actor interface {
	IsDepartement() bool
	HasOrganizerRole() bool
}

// CanRegister reports whether actor may register for an agenda, event or
// project whose can_register value is role. A deadline at or before now
// closes registration regardless of role; a nil deadline never closes it.
//
// Admin maps to the departement check, not the administrator check. Callers
// relying on administrator-only registration must use Departement or
// restrict it at the handler.
func CanRegister(role models.Role, deadline *time.Time, now time.Time, actor Actor) bool {
	if deadline != nil && !deadline.After(now) {
		return false
	}
	switch role {
	case models.RoleAll:
		return true
	case models.RoleNo:
		return false
	case models.RoleAdmin, models.RoleDepartement:
		return actor != nil && actor.IsDepartement()
	case models.RoleInternal:
		return actor != nil && actor.HasOrganizerRole()
	case models.RoleExternal:
		return actor == nil || !actor.HasOrganizerRole()
	}
	return false
}

// VisibleRoles returns the can_see values actor may list. A nil actor is
// an anonymous visitor.
func VisibleRoles(actor Actor) []models.Role {
	roles := []models.Role{models.RoleAll, models.RoleExternal}
	if actor != nil && actor.HasOrganizerRole() {
		roles = append(roles, models.RoleInternal, models.RoleAdmin, models.RoleDepartement)
	}
	return roles
}

// CanSee reports whether role is among VisibleRoles(actor).
func CanSee(role models.Role, actor Actor) bool {
	for _, r := range VisibleRoles(actor) {
		if r == role {
			return true
		}
	}
	return false
}
