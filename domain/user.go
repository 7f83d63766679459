package domain

import "time"

// UserType classifies an account on the volunteer platform.
type UserType string

const (
	UserTypeVolunteer    UserType = "VOLUNTEER"
	UserTypeOrganization UserType = "ORGANIZATION"
	UserTypeAdmin        UserType = "ADMIN"
)

// IsValid reports whether the value is one of the known user types.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeVolunteer, UserTypeOrganization, UserTypeAdmin:
		return true
	}
	return false
}

// User represents a registered identity on the platform.
// PasswordHash always holds a bcrypt digest, never the plaintext.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	UserType     UserType  `json:"user_type"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Active
}
