package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/tripbot/tripbot/internal/metrics"
	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
)

// Publisher mirrors a trip snapshot into an external document
type Publisher interface {
	Publish(ctx context.Context, snap *models.Snapshot) error
}

// Syncer schedules snapshot publishes after store mutations. Triggers are
// non-blocking and coalesce: at most one publish is ever in flight, and a
// trigger that arrives while a publish is running is picked up by the
// runner's re-check loop, so every mutation is eventually published.
type Syncer struct {
	store   *store.Store
	pub     Publisher
	logger  *logrus.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *atomic.Bool
}

// New creates a Syncer. The pending flag and lock are constructed eagerly;
// no runtime needs to exist before the first trigger.
func New(st *store.Store, pub Publisher, timeout time.Duration, logger *logrus.Logger) *Syncer {
	return &Syncer{
		store:   st,
		pub:     pub,
		logger:  logger,
		timeout: timeout,
		pending: atomic.NewBool(false),
	}
}

// Trigger requests a publish of the current state. It returns immediately:
// when sync is disabled or no target document is configured it is a no-op,
// otherwise it marks a publish as pending and schedules the runner.
func (s *Syncer) Trigger() {
	cfg := s.store.SyncConfig()
	if !cfg.Enabled || cfg.DocURL == "" {
		return
	}
	s.pending.Store(true)
	go s.run()
}

// TriggerNow requests a publish regardless of the auto-sync toggle, for the
// manual sync command. A target document must still be configured.
func (s *Syncer) TriggerNow() {
	cfg := s.store.SyncConfig()
	if cfg.DocURL == "" {
		return
	}
	s.pending.Store(true)
	go s.run()
}

// run drains pending publish requests. If another runner holds the lock it
// exits immediately; that runner's re-check loop will observe the pending
// flag we just set and publish again before releasing the lock.
func (s *Syncer) run() {
	if !s.mu.TryLock() {
		s.logger.Debug("Publish already in flight, leaving request to the runner")
		return
	}
	defer s.mu.Unlock()

	for s.pending.Swap(false) {
		s.publishOnce()
	}
}

// publishOnce performs a single publish: records in_progress, hands a fresh
// snapshot to the collaborator under a bounded timeout, and records the
// terminal status. Collaborator failures never propagate.
func (s *Syncer) publishOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Panic during snapshot publish: %v", r)
			s.store.SetSyncStatus(models.SyncStatusFailed)
			metrics.SyncPublishes.WithLabelValues("failed").Inc()
		}
	}()

	s.store.SetSyncStatus(models.SyncStatusInProgress)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap := s.store.Snapshot()
	start := time.Now()
	if err := s.pub.Publish(ctx, snap); err != nil {
		s.logger.WithError(err).Error("Snapshot publish failed")
		s.store.SetSyncStatus(models.SyncStatusFailed)
		metrics.SyncPublishes.WithLabelValues("failed").Inc()
		return
	}

	s.logger.WithFields(logrus.Fields{
		"items":    snap.Stats.TotalItems,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Snapshot published")
	s.store.SetSyncStatus(models.SyncStatusSuccess)
	metrics.SyncPublishes.WithLabelValues("success").Inc()
}
