package models

import "time"

// Role is a user's role within the dashboard.
type Role string

const (
	RoleMaster  Role = "MASTER"
	RoleManager Role = "MANAGER"
)

// Manager links a user profile to the sellers they own. The user link is 1:1.
type Manager struct {
	ID        string     `json:"id" db:"id"`
	TenantID  string     `json:"tenant_id" db:"tenant_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Email     *string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
