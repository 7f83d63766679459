package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/volunteerhub/auth-service/domain"
	"github.com/volunteerhub/auth-service/internal/infrastructure/spool"
	"github.com/volunteerhub/auth-service/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// RecorderConfig controls how frequently the spool is drained and how long
// undeliverable events are kept. Zero Retention keeps spooled events until
// their retry budget runs out.
type RecorderConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// AuditRecorder delivers audit events to the trail backend, spooling them
// locally while the backend is unavailable and draining the spool on a
// schedule.
type AuditRecorder struct {
	trail   repository.AuditTrail
	store   *spool.Store
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RecorderConfig
}

func NewAuditRecorder(
	trail repository.AuditTrail,
	store *spool.Store,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg RecorderConfig,
) *AuditRecorder {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &AuditRecorder{
		trail:   trail,
		store:   store,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := r.Drain(ctx); err != nil {
			r.logger.Error("audit spool drain failed", zap.Error(err))
		}
	})

	return r
}

// Start launches the cron scheduler.
func (r *AuditRecorder) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("audit recorder started")
}

// Stop gracefully stops the scheduler.
func (r *AuditRecorder) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("audit recorder stopped")
}

// Record attempts immediate delivery and falls back to the spool. It
// implements repository.AuditTrail so the auth workflow stays unaware of
// the fallback.
func (r *AuditRecorder) Record(ctx context.Context, event domain.AuditEvent) error {
	if r == nil || r.trail == nil {
		return fmt.Errorf("audit recorder not configured")
	}

	if r.monitor == nil || r.monitor.IsOnline() {
		if err := r.trail.Record(ctx, event); err == nil {
			return nil
		} else {
			r.logger.Warn("immediate audit delivery failed, spooling", zap.Error(err))
		}
	}
	if r.store == nil {
		return fmt.Errorf("audit spool not configured")
	}
	return r.store.Enqueue(spool.Entry{Event: event})
}

// Drain delivers spooled events synchronously. Events older than the
// retention window are discarded first, even while the backend is offline,
// so an unreachable trail cannot grow the spool without bound.
func (r *AuditRecorder) Drain(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	if r.cfg.Retention > 0 {
		if err := r.store.Cleanup(time.Now().Add(-r.cfg.Retention)); err != nil {
			r.logger.Warn("audit spool cleanup failed", zap.Error(err))
		}
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping audit drain (offline)")
		return nil
	}

	entries, err := r.store.GetBatch(r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := r.trail.Record(ctx, entry.Event); err != nil {
			r.logger.Error("failed to deliver spooled audit event",
				zap.String("event_id", entry.Event.ID),
				zap.Error(err))

			entry.Retries++
			if entry.Retries >= r.cfg.MaxRetries {
				r.logger.Warn("dropping audit event (max retries reached)", zap.String("event_id", entry.Event.ID))
				_ = r.store.Remove(entry)
				continue
			}

			if err := r.store.Remove(entry); err != nil {
				r.logger.Warn("failed to remove spooled audit event", zap.Error(err))
			}
			if err := r.store.Requeue(entry); err != nil {
				r.logger.Error("failed to requeue audit event", zap.Error(err))
			}
			continue
		}

		if err := r.store.Remove(entry); err != nil {
			r.logger.Warn("failed to purge delivered audit event", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of spooled events.
func (r *AuditRecorder) Size() int {
	if r == nil || r.store == nil {
		return 0
	}
	size, err := r.store.Size()
	if err != nil {
		return 0
	}
	return size
}

var _ repository.AuditTrail = (*AuditRecorder)(nil)
