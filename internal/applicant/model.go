package applicant

import (
	"time"

	"github.com/skill-bridge/skill_bridge/internal/identity"
)

// Status tracks an application through its lifecycle. Applicants are never
// deleted; the row doubles as an audit trail.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusProvisioned Status = "provisioned"
)

// Applicant is an identity awaiting provisioning.
type Applicant struct {
	ID         string
	FullName   string
	Email      string
	Role       identity.Role
	Status     Status
	ApprovedBy string
	ApprovedAt *time.Time
	CreatedAt  time.Time
}
