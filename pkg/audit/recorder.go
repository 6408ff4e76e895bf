// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const recordTimeout = 5 * time.Second

// Recorder writes audit events asynchronously so a slow or broken store
// never delays a user-facing response. Write failures are logged, not
// returned.
type Recorder struct {
	store Store
	wg    sync.WaitGroup
}

// NewRecorder wraps a store with fire-and-forget recording.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record queues an event for persistence and returns immediately.
func (r *Recorder) Record(event Event) {
	if r == nil || r.store == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.store.Record(ctx, event); err != nil {
			slog.Error("audit record failed", "session_id", event.SessionID, "error", err)
		}
	}()
}

// Flush blocks until all queued events have been written. Intended for
// shutdown and tests.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
