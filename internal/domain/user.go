package domain

import "time"

// UserRole enumerates application roles.
type UserRole string

const (
	RoleAdministrator UserRole = "Administrator"
	RoleOperator      UserRole = "Operator"
	RoleViewer        UserRole = "Viewer"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	return r == RoleAdministrator || r == RoleOperator || r == RoleViewer
}

// User is an authenticated operator of the system.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	Role         UserRole
	AreaID       *int64
	EmployeeID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdministrator
}
