package feishu

import (
	"sync"
	"time"
)

const (
	dedupTTL     = 10 * time.Minute
	dedupMaxSize = 1024
)

// Deduper suppresses duplicate webhook deliveries by message id. Entries
// expire after a TTL; the map is swept whenever it grows past the size
// bound so it cannot grow without limit.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	max  int
	now  func() time.Time
}

// NewDeduper constructs a Deduper with the default TTL and size bound.
func NewDeduper() *Deduper {
	return &Deduper{
		seen: make(map[string]time.Time),
		ttl:  dedupTTL,
		max:  dedupMaxSize,
		now:  time.Now,
	}
}

// Seen records a message id and reports whether it was already delivered
// within the TTL window. Empty ids are never deduplicated.
func (d *Deduper) Seen(messageID string) bool {
	if messageID == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.seen[messageID]; ok && now.Sub(at) < d.ttl {
		return true
	}
	d.seen[messageID] = now

	if len(d.seen) > d.max {
		for id, at := range d.seen {
			if now.Sub(at) >= d.ttl {
				delete(d.seen, id)
			}
		}
	}
	return false
}
