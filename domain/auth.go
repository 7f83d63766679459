package domain

// AuthResult is the outcome of a successful register or login. It is
// returned once and never stored.
type AuthResult struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	UserType UserType `json:"user_type"`
	Token    string   `json:"token"`
}
