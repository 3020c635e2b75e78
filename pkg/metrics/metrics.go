package metrics

import (
	"sync"
	"time"
)

// Tracker owns the run counters. Every mutation goes through Done so
// concurrent candidate goroutines never touch a counter directly.
type Tracker struct {
	mu        sync.Mutex
	total     int
	processed int
	dnsHits   int
	httpHits  int
	start     time.Time
}

type Snapshot struct {
	Total     int
	Processed int
	DNSHits   int
	HTTPHits  int
	Elapsed   time.Duration
}

func NewTracker(total int) *Tracker {
	return &Tracker{
		total: total,
		start: time.Now(),
	}
}

// Done records one candidate's terminal outcome and returns the counters
// as they stood after the update.
func (t *Tracker) Done(dnsHit, httpHit bool) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed++
	if dnsHit {
		t.dnsHits++
	}
	if httpHit {
		t.httpHits++
	}
	return t.snapshotLocked()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Total:     t.total,
		Processed: t.processed,
		DNSHits:   t.dnsHits,
		HTTPHits:  t.httpHits,
		Elapsed:   time.Since(t.start),
	}
}
