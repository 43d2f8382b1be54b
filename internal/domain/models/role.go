// internal/domain/models/role.go
package models

// Role is the six-value audience enum stored in can_see / can_register.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleDepartement Role = "Departement"
	RoleInternal    Role = "Internal"
	RoleAll         Role = "All"
	RoleExternal    Role = "External"
	RoleNo          Role = "No"
)

// AllRoles lists every accepted Role in display order.
var AllRoles = []Role{RoleAdmin, RoleDepartement, RoleInternal, RoleAll, RoleExternal, RoleNo}

// IsValid reports whether r is one of the six known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDepartement, RoleInternal, RoleAll, RoleExternal, RoleNo:
		return true
	}
	return false
}

// RoleOrDefault returns r when it is set, otherwise def.
func RoleOrDefault(r, def Role) Role {
	if r == "" {
		return def
	}
	return r
}

// RoleValues returns AllRoles as []interface{} for validation rules.
func RoleValues() []interface{} {
	out := make([]interface{}, len(AllRoles))
	for i, r := range AllRoles {
		out[i] = r
	}
	return out
}
