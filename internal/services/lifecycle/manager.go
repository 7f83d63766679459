package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc releases one component's resources during shutdown.
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// Manager owns the service's stop sequence: it listens for termination
// signals and runs registered hooks in reverse registration order, so the
// HTTP server stops before the stores and spool it depends on.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []shutdownHook
}

// New creates a lifecycle manager. A non-positive timeout falls back to 15s.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a named shutdown hook.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, shutdownHook{name: name, fn: fn})
}

// Shutdown runs every hook, newest first, within the configured timeout.
// A failing hook is reported and does not stop the remaining hooks.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var failed error
	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("component shutdown failed", zap.String("component", h.name), zap.Error(err))
			failed = errors.Join(failed, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name))
	}
	if failed == nil {
		m.logger.Info("shutdown complete", zap.Int("components", len(m.hooks)))
	}
	return failed
}

// Listen waits for SIGTERM/SIGINT in the background and invokes cancel.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
