package physician

import "time"

const (
	RoleIR       = "IR"
	RoleReferrer = "Referrer"
)

// Physician is a staff member procedures reference, either a performing
// interventional radiologist or a referring physician.
type Physician struct {
	ID          int       `json:"physicianID" db:"id"`
	Name        string    `json:"name" db:"name"`
	Credentials *string   `json:"credentials,omitempty" db:"credentials"`
	Department  *string   `json:"department,omitempty" db:"department"`
	Role        string    `json:"role" db:"role"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
