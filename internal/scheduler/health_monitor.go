package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

const (
	// DefaultHealthInterval is how often the store is probed
	DefaultHealthInterval = time.Minute
	// probeTimeout bounds one probe
	probeTimeout = 5 * time.Second
)

// StoreStatus is the outcome of the last store probe.
type StoreStatus struct {
	OK        bool
	Backend   string
	Bookmarks int
	LastCheck time.Time
	Error     string
}

// HealthMonitor probes the record store periodically and keeps the last result.
type HealthMonitor struct {
	store    store.Store
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	status StoreStatus
}

// NewHealthMonitor creates a new health monitor.
func NewHealthMonitor(st store.Store, log logger.Logger, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	return &HealthMonitor{
		store:    st,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		status:   StoreStatus{Backend: st.Backend()},
	}
}

// Start runs a first probe and then probes on every tick.
func (hm *HealthMonitor) Start(ctx context.Context) {
	// Run immediately on start
	hm.Check(ctx)

	ticker := time.NewTicker(hm.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hm.Check(ctx)
			case <-hm.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the health monitor.
func (hm *HealthMonitor) Stop() {
	hm.stopOnce.Do(func() { close(hm.stopCh) })
}

// Status returns a copy of the last probe result.
func (hm *HealthMonitor) Status() StoreStatus {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.status
}

// Check pings the store, counts bookmarks and records the result.
// State changes are logged; steady state only at debug level.
func (hm *HealthMonitor) Check(ctx context.Context) StoreStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	next := StoreStatus{Backend: hm.store.Backend(), LastCheck: hm.now()}

	err := hm.store.Ping(ctx)
	if err == nil {
		var list []domain.Bookmark
		list, err = hm.store.ListBookmarks(ctx)
		next.Bookmarks = len(list)
	}
	if err != nil {
		next.Error = err.Error()
	} else {
		next.OK = true
	}

	hm.mu.Lock()
	prev := hm.status
	hm.status = next
	hm.mu.Unlock()

	switch {
	case !next.OK && (prev.OK || prev.LastCheck.IsZero()):
		hm.logger.Warn("record store unreachable",
			logger.String("backend", next.Backend),
			logger.String("error", next.Error))
	case next.OK && !prev.OK && !prev.LastCheck.IsZero():
		hm.logger.Info("record store recovered",
			logger.String("backend", next.Backend),
			logger.Int("bookmarks", next.Bookmarks))
	default:
		hm.logger.Debug("record store probed",
			logger.String("backend", next.Backend),
			logger.Bool("ok", next.OK),
			logger.Int("bookmarks", next.Bookmarks))
	}

	return next
}
