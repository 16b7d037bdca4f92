package cycle

import (
	"sync/atomic"
	"time"
)

// HostCycleSource derives a simulated 32-bit cycle counter from time.Now(),
// scaled by RateHz (counts per second). A high RateHz makes the 32-bit
// wraparound behaviour reachable in a short-running test; the real firmware
// rate (typically tens of MHz) would wrap in well under a minute, which
// tests cannot afford to wait for in real time.
type HostCycleSource struct {
	rateHz int64
	origin atomic.Int64 // UnixNano at which the counter was last zeroed
}

// NewHostCycleSource returns a source ticking at rateHz counts per second.
func NewHostCycleSource(rateHz int64) *HostCycleSource {
	h := &HostCycleSource{rateHz: rateHz}
	h.origin.Store(time.Now().UnixNano())
	return h
}

func (h *HostCycleSource) Start() {
	h.origin.Store(time.Now().UnixNano())
}

func (h *HostCycleSource) Reset() {
	h.origin.Store(time.Now().UnixNano())
}

func (h *HostCycleSource) Count() uint32 {
	elapsedNs := time.Now().UnixNano() - h.origin.Load()
	counts := elapsedNs * h.rateHz / int64(time.Second)
	return uint32(uint64(counts))
}
