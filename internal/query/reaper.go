package query

import (
	"context"
	"log/slog"
	"time"
)

// StartReaper launches a background loop that drops expired submissions
// every interval until ctx is canceled.
//
// Result expiration is advisory: the results never self-evict, so the
// reaper is what keeps a long-lived manager's registry bounded.
func (m *Manager) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ReapExpired(time.Now())
			}
		}
	}()
}

// ReapExpired cancels and deregisters every submission whose result expired
// before now, returning the number reaped.
func (m *Manager) ReapExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for id, sub := range m.submissions {
		if now.After(sub.result.Expiration()) {
			sub.result.Cancel()
			delete(m.submissions, id)
			reaped++
			slog.Debug("reaped expired lineage submission", "submission", id)
		}
	}
	return reaped
}
