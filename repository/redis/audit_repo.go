package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/volunteerhub/auth-service/domain"
	"github.com/volunteerhub/auth-service/repository"
)

type auditTrail struct {
	client     *redislib.Client
	key        string
	maxEntries int64
	retention  time.Duration
}

// NewAuditTrail creates a Redis-backed audit trail. Events land in a
// capped list; retention controls how long the trail survives without new
// writes.
func NewAuditTrail(client *redislib.Client, maxEntries int64, retention time.Duration) repository.AuditTrail {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &auditTrail{
		client:     client,
		key:        "audit:auth",
		maxEntries: maxEntries,
		retention:  retention,
	}
}

func (r *auditTrail) Record(ctx context.Context, event domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, payload)
	pipe.LTrim(ctx, r.key, 0, r.maxEntries-1)
	pipe.Expire(ctx, r.key, r.retention)
	_, err = pipe.Exec(ctx)
	return err
}
