package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestDeduper(ttl time.Duration, max int) (*Deduper, *time.Time) {
	d := New(ttl, max)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return clock }
	return d, &clock
}

func TestShouldProcessDropsDuplicatesWithinTTL(t *testing.T) {
	d, clock := newTestDeduper(time.Minute, 10)

	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("a"))

	*clock = clock.Add(2 * time.Minute)
	assert.True(t, d.ShouldProcess("a"), "expired id must be processed again")
}

func TestShouldProcessEmptyIDAlwaysPasses(t *testing.T) {
	d, _ := newTestDeduper(time.Minute, 10)
	assert.True(t, d.ShouldProcess(""))
	assert.True(t, d.ShouldProcess(""))
	assert.Equal(t, 0, d.Len())
}

func TestCapacityIsEnforced(t *testing.T) {
	d, clock := newTestDeduper(time.Hour, 2)

	assert.True(t, d.ShouldProcess("a"))
	*clock = clock.Add(time.Second)
	assert.True(t, d.ShouldProcess("b"))
	*clock = clock.Add(time.Second)
	assert.True(t, d.ShouldProcess("c"))

	assert.Equal(t, 2, d.Len())
	assert.True(t, d.ShouldProcess("a"), "oldest id should have been evicted")
}

func TestPayloadKeyIsStable(t *testing.T) {
	d, _ := newTestDeduper(time.Minute, 10)
	payload := []byte(`{"command":"toggle_pump"}`)

	assert.Equal(t, PayloadKey(payload), PayloadKey([]byte(`{"command":"toggle_pump"}`)))
	assert.True(t, d.ShouldProcessPayload(payload))
	assert.False(t, d.ShouldProcessPayload(payload))
}

func TestNilDeduperProcessesEverything(t *testing.T) {
	var d *Deduper
	assert.True(t, d.ShouldProcess("x"))
}
