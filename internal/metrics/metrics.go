// Package metrics exposes the runtime's internal churn — software timer
// creation/destruction, relay queue depth, and mutex-ID stack depth — as
// Prometheus instruments, so a host application can scrape them alongside
// its own metrics rather than parse rtlog output.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TimersInUse is the current number of software timers registered with
	// the multiplexer.
	TimersInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crt_timers_in_use",
		Help: "Number of software timers currently registered with the multiplexer.",
	})

	// TimerFiresTotal counts how many times a software timer's callback has
	// run. It carries a "source" label; the multiplexer records every
	// callback under source="chunk" and does not tell plain fires apart from
	// long-timer chunks.
	TimerFiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crt_timer_fires_total",
		Help: "Total number of software timer callback invocations.",
	}, []string{"source"})

	// HardwareRearmsTotal counts how many times the hardware timer has been
	// reprogrammed to a new due time.
	HardwareRearmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crt_hardware_rearms_total",
		Help: "Total number of times the hardware timer was reprogrammed.",
	})

	// RelayQueueDepth is the current number of pending records in the
	// long-timer relay's request queue.
	RelayQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crt_relay_queue_depth",
		Help: "Current number of pending records in the long-timer relay queue.",
	})

	// RelayQueueFullTotal counts how many times a relay request hit a full
	// queue — always a programmer error (see Config.RelayQueueDepth), but
	// worth scraping in case it ever happens in the field.
	RelayQueueFullTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crt_relay_queue_full_total",
		Help: "Total number of relay requests that found the queue full.",
	})

	// MutexStackDepth tracks the current depth of a task's mutex-ID stack,
	// labeled by task name, to catch nesting creeping
	// toward Config.MaxMutexNesting before it panics.
	MutexStackDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crt_mutex_stack_depth",
		Help: "Current depth of a task's mutex-ID lock stack.",
	}, []string{"task"})

	// MutexOrderViolationsTotal counts Lock calls that panicked because the
	// requested mutex ID did not exceed the task's current stack top.
	MutexOrderViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crt_mutex_order_violations_total",
		Help: "Total number of mutex lock attempts that violated the ordered-locking invariant.",
	})
)
