package model

// Role names are stored on the User document as plain strings so the
// collection stays readable; the typed constants keep checks bounded.
type Role string

const (
	RoleUser    Role = "user"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// HasAnyRole reports whether granted intersects required.
func HasAnyRole(granted []Role, required ...Role) bool {
	for _, need := range required {
		for _, have := range granted {
			if have == need {
				return true
			}
		}
	}
	return false
}

// AppendRole returns roles with role added, without duplicating it.
func AppendRole(roles []Role, role Role) []Role {
	if HasAnyRole(roles, role) {
		return roles
	}
	return append(roles, role)
}
