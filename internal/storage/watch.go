package storage

import (
	"context"
	"time"
)

// StartAutoReload polls the backing file so changes made by another process
// of the client become visible. Stops when ctx is cancelled.
func StartAutoReload(ctx context.Context, s *FileStore, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Reload()
			}
		}
	}()
}
