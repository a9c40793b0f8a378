package identity

import (
	"strings"
	"time"
)

// Role is the portal role a credential is scoped to.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleTrainer   Role = "trainer"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a role string. The second return value reports whether
// the input named a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleRecruiter:
		return RoleRecruiter, true
	case RoleTrainer:
		return RoleTrainer, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Dashboard maps a role to its destination surface. This is the server-side
// statement of the client router contract: unrecognized roles fall back to the
// student dashboard.
func (r Role) Dashboard() string {
	switch r {
	case RoleRecruiter:
		return "/recruiter/dashboard"
	case RoleTrainer:
		return "/trainer/dashboard"
	case RoleAdmin:
		return "/admin/console"
	default:
		return "/student/dashboard"
	}
}

// Credential is a provisioned identity capable of authenticating. The password
// is held only as a bcrypt hash.
type Credential struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}
