package user

import (
	"time"

	"github.com/NLight-n/IRLog/internal/platform/auth"
	"github.com/NLight-n/IRLog/pkg/columns"
)

// User is an application account. Permissions are a flat capability set
// stored alongside the account; Columns holds the user's saved procedure
// table layout.
type User struct {
	ID          int                `json:"userID" db:"id"`
	Username    string             `json:"username" db:"username"`
	Email       string             `json:"email" db:"email"`
	Role        string             `json:"role" db:"role"`
	Theme       string             `json:"theme" db:"theme"`
	AccentColor string             `json:"accentColor" db:"accent_color"`
	Columns     []columns.Column   `json:"columns,omitempty" db:"columns"`
	Permissions auth.PermissionSet `json:"permissions" db:"-"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`

	// PasswordHash never serializes.
	PasswordHash string `json:"-" db:"password"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
