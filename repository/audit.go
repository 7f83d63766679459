package repository

import (
	"context"

	"github.com/volunteerhub/auth-service/domain"
)

// AuditTrail persists authentication audit events. Implementations are
// best-effort sinks; the auth workflow never fails an operation because an
// audit write failed.
type AuditTrail interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}
