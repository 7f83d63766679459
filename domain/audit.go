package domain

import "time"

const (
	AuditActionRegister = "register"
	AuditActionLogin    = "login"

	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
)

// AuditEvent records an authentication attempt for internal review. Reason
// carries the true cause of a failure (unknown email, wrong password,
// disabled account) and is never exposed to callers.
type AuditEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Email     string    `json:"email,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
