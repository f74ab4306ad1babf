package memory

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lepko/lepko/internal/application/constant"
)

// Drop is one uploaded file waiting for its single download.
type Drop struct {
	Path      string
	Filename  string
	ExpiresAt time.Time
}

// DropRepository holds drop metadata in memory. No persistence on purpose:
// a restart voids all pending links, matching the ephemeral contract.
type DropRepository interface {
	Put(id uuid.UUID, drop Drop)

	// Claim removes and returns the drop; a link works exactly once.
	Claim(id uuid.UUID) (Drop, bool)

	// Transferred is the number of drops claimed since startup.
	Transferred() int64
}

type dropRepository struct {
	mu    sync.Mutex
	drops map[uuid.UUID]Drop

	transferred atomic.Int64
}

// NewDropRepository starts a sweeper that deletes expired drops (metadata
// and file) until ctx is cancelled.
func NewDropRepository(ctx context.Context, sweepInterval time.Duration) DropRepository {
	r := &dropRepository{
		drops: make(map[uuid.UUID]Drop),
	}

	go r.sweep(ctx, sweepInterval)

	return r
}

func (r *dropRepository) Put(id uuid.UUID, drop Drop) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drops[id] = drop
}

func (r *dropRepository) Claim(id uuid.UUID) (Drop, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop, ok := r.drops[id]
	if !ok {
		return Drop{}, false
	}

	if time.Now().After(drop.ExpiresAt) {
		delete(r.drops, id)
		removeFile(drop.Path)
		return Drop{}, false
	}

	delete(r.drops, id)
	r.transferred.Add(1)

	return drop, true
}

func (r *dropRepository) Transferred() int64 {
	return r.transferred.Load()
}

func (r *dropRepository) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.mu.Lock()
			for id, drop := range r.drops {
				if now.After(drop.ExpiresAt) {
					delete(r.drops, id)
					removeFile(drop.Path)
				}
			}
			r.mu.Unlock()
		}
	}
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("remove expired drop file", slog.Any(constant.Error, err))
	}
}
