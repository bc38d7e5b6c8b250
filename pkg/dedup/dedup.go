// Package dedup scarta i messaggi già visti entro una finestra TTL.
// Serve per le redelivery QoS1 di MQTT: stesso payload → stesso id.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max), now: time.Now}
}

// PayloadKey hashes a raw payload into a dedup id.
func PayloadKey(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}

// ShouldProcess reports whether id has not been seen within the TTL and marks it seen.
func (d *Deduper) ShouldProcess(id string) bool {
	if d == nil || id == "" {
		return true
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.evictLocked(now)
	}
	return true
}

// ShouldProcessPayload is ShouldProcess keyed by PayloadKey(payload).
func (d *Deduper) ShouldProcessPayload(payload []byte) bool {
	return d.ShouldProcess(PayloadKey(payload))
}

// Len returns the number of tracked ids, expired ones included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictLocked drops expired ids first; if the map is still over capacity it
// drops the ids closest to expiry.
func (d *Deduper) evictLocked(now time.Time) {
	for k, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, k)
		}
	}
	for len(d.seen) > d.max {
		var oldestKey string
		var oldest time.Time
		for k, exp := range d.seen {
			if oldestKey == "" || exp.Before(oldest) {
				oldestKey, oldest = k, exp
			}
		}
		delete(d.seen, oldestKey)
	}
}
