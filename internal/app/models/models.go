package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleTeacher RoleType = "TEACHER"
	RoleAdmin   RoleType = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Identity is what the token verifier vouches for. It is attached to a
// connection at admission and never re-verified.
type Identity struct {
	UserID   string   `json:"userId"`
	Role     RoleType `json:"role"`
	SchoolID string   `json:"schoolId"`
}
