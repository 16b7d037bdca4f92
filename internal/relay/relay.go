// Package relay implements the long-timer relay: a dedicated task that
// decomposes durations exceeding the hardware counter's range into a
// sequence of re-armed chunks, so the interrupt path never has to restart
// the multiplexer itself. It is a direct port of crt_LongTimerRelay.h/.cpp.
package relay

import (
	"fmt"

	"github.com/crtgo/crt/internal/metrics"
	"github.com/crtgo/crt/kernel"
	"github.com/crtgo/crt/rtlog"
)

var log = rtlog.Named("relay")

// Action distinguishes the two things a relay record can ask the relay task
// to do.
type Action int

const (
	// Rearm asks the target to continue chopping a long timer: advance its
	// chunk counters and either arm the next chunk or deliver completion.
	Rearm Action = iota
	// DeliverOnly asks the target to signal its owner without any further
	// chunking, used for the non-chopped (ordinary) timer fire path.
	DeliverOnly
)

// Target is the software-timer side of a relay record: whatever run_id
// bookkeeping and multiplexer re-arming the record implies is delegated
// back to it, since only the timer knows its total duration and chunk
// state.
type Target interface {
	OnRelayRearm(runID uint64)
	OnRelayDeliver(runID uint64)
}

type record struct {
	action Action
	target Target
	runID  uint64
}

// Relay runs relay records through a single task, one at a time, in FIFO
// order, decoupling delivery and chunk re-arming from hardware-timer
// interrupt priority.
type Relay struct {
	queue *kernel.Queue[record]
	task  *kernel.Task
	stop  chan struct{}
}

// New returns a Relay whose request queue holds up to queueDepth records.
// The caller must size queueDepth generously: requests issued from ISR
// context never block, and a full queue is a programmer error (see
// RequestRearm/RequestDeliver).
func New(queueDepth int) *Relay {
	return &Relay{
		queue: kernel.NewQueue[record](queueDepth),
		stop:  make(chan struct{}),
	}
}

// Start launches the relay's processing task.
func (r *Relay) Start() {
	r.task = kernel.StartTask(kernel.TaskConfig{Name: "crt-relay", Priority: 0}, r.run)
}

// Stop terminates the relay's processing task. Safe to call at most once.
func (r *Relay) Stop() {
	close(r.stop)
	if r.task != nil {
		r.task.Join()
	}
}

func (r *Relay) run() {
	for {
		select {
		case <-r.stop:
			return
		case rec := <-r.queue.Chan():
			metrics.RelayQueueDepth.Set(float64(r.queue.Len()))
			switch rec.action {
			case Rearm:
				rec.target.OnRelayRearm(rec.runID)
			case DeliverOnly:
				rec.target.OnRelayDeliver(rec.runID)
			}
		}
	}
}

// RequestRearm enqueues a chunk-continuation request. Safe to call from
// ISR context: it uses a zero-timeout enqueue and panics if the queue is
// full, since a full relay queue means the caller under-sized it.
func (r *Relay) RequestRearm(target Target, runID uint64) {
	r.request(Rearm, target, runID)
}

// RequestDeliver enqueues a plain-delivery request. Safe to call from ISR
// context, with the same full-queue contract as RequestRearm.
func (r *Relay) RequestDeliver(target Target, runID uint64) {
	r.request(DeliverOnly, target, runID)
}

func (r *Relay) request(action Action, target Target, runID uint64) {
	if !r.queue.TryPut(record{action: action, target: target, runID: runID}) {
		metrics.RelayQueueFullTotal.Inc()
		log.Panic(fmt.Sprintf("relay: request queue full (action=%d) — size RelayQueueDepth larger", action))
	}
	metrics.RelayQueueDepth.Set(float64(r.queue.Len()))
}
