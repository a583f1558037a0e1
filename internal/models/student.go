package models

import "time"

// Role names with elevated privileges. A student without an elevated role
// is a regular student and counts toward population-based metrics.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Student represents an enrolled learner. Rows are never hard-deleted;
// roster synchronization toggles the Enabled flag instead.
type Student struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Email     string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName  string        `gorm:"size:255" json:"full_name"`
	Enabled   bool          `gorm:"not null;default:false" json:"enabled"`
	Roles     []StudentRole `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"roles,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// StudentRole tags a student with an elevated role.
type StudentRole struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	StudentID uint   `gorm:"not null;index" json:"student_id"`
	Role      string `gorm:"size:32;not null" json:"role"`
}

// IsElevated reports whether the student carries an admin or superadmin role.
func (s Student) IsElevated() bool {
	for _, r := range s.Roles {
		if r.Role == RoleAdmin || r.Role == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// IsEligible reports whether the student counts toward population metrics:
// enabled and not carrying an elevated role.
func (s Student) IsEligible() bool {
	return s.Enabled && !s.IsElevated()
}
