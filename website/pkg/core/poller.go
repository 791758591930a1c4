package core

import (
	"context"
	"sync"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/screen"
)

// LoadRecord holds the outcome of one finished load.
type LoadRecord struct {
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
}

const maxLoadRecords = 20

// refreshStatus keeps the recent load history for the status page.
type refreshStatus struct {
	interval time.Duration

	mu      sync.RWMutex
	started time.Time
	records []LoadRecord // newest first
	stopped bool
}

// observe is subscribed to the controller and times every load.
func (r *refreshStatus) observe(st screen.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch st.Status {
	case screen.Loading:
		r.started = time.Now()
	case screen.Ready, screen.Failed:
		rec := LoadRecord{StartedAt: r.started, Duration: time.Since(r.started), Success: st.Status == screen.Ready}
		r.records = append([]LoadRecord{rec}, r.records...)
		if len(r.records) > maxLoadRecords {
			r.records = r.records[:maxLoadRecords]
		}
		r.stopped = st.Status == screen.Failed
	}
}

// Records returns a copy of the load history, newest first.
func (r *refreshStatus) Records() []LoadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LoadRecord(nil), r.records...)
}

func (r *refreshStatus) Stopped() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stopped
}

// startBackgroundRefresher reloads the dashboard every interval. Ticks are
// skipped while the last load has failed; a successful explicit refresh
// resumes them.
func (s *Site) startBackgroundRefresher(ctx context.Context, interval time.Duration) {
	utils.Log.Infof("Starting background refresher (interval: %s)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	paused := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if s.controller.Stopped() {
			if !paused {
				utils.Log.Warn("Background refresh paused after a failed load")
				paused = true
			}
			continue
		}
		if paused {
			utils.Log.Info("Background refresh resumed")
			paused = false
		}
		if err := s.controller.Load(ctx, s.gateway); err != nil {
			utils.Log.WithError(err).Debug("Refresh failed")
		}
	}
}
