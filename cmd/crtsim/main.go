// Command crtsim runs the concrete scenarios from the runtime's testable
// properties as a standalone program, so its timing behaviour can be
// observed outside of `go test` — flag ping-pong, waiting on several
// timers, a pool-protected vs. unprotected data race, a mutex-order
// violation, and stopping a timer mid-chunk.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/crtgo/crt"
	"github.com/crtgo/crt/cycle"
	"github.com/crtgo/crt/hwtimer"
	"github.com/crtgo/crt/rtlog"
)

var (
	scenario = pflag.StringP("scenario", "s", "", "scenario to run: ping-pong, wait-any, wait-all, pool-race, mutex-order, stop-chunk")
	verbose  = pflag.IntP("v", "v", 0, "rtlog verbosity level")
	list     = pflag.Bool("list", false, "list available scenarios and exit")
)

var scenarios = map[string]func(*crt.System){
	"ping-pong":   runPingPong,
	"wait-any":    runWaitAny,
	"wait-all":    runWaitAll,
	"pool-race":   runPoolRace,
	"mutex-order": runMutexOrder,
	"stop-chunk":  runStopChunk,
}

func main() {
	pflag.Parse()
	rtlog.SetLogToStderr(true)
	rtlog.SetLevel(rtlog.Level(*verbose))

	if *list || *scenario == "" {
		fmt.Fprintln(os.Stderr, "available scenarios:")
		for name := range scenarios {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		if *scenario == "" {
			os.Exit(2)
		}
		return
	}

	run, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "crtsim: unknown scenario %q\n", *scenario)
		os.Exit(2)
	}

	cfg := crt.DefaultConfig()
	drv := hwtimer.NewSimulated()
	src := cycle.NewHostCycleSource(int64(cfg.ClockRateHz))
	sys, err := crt.Init(cfg, drv, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crtsim: %v\n", err)
		os.Exit(1)
	}

	run(sys)
}

// runPingPong reproduces spec.md §8 scenario 1: task B signals A's flag
// once a "tick", A wakes on every signal exactly once, with no spurious
// wakes.
func runPingPong(sys *crt.System) {
	a := sys.NewTask("a", 0)
	hi := crt.NewFlag(a)

	const rounds = 5
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < rounds; i++ {
			a.Wait(hi)
			fmt.Printf("a: hi #%d at %dus\n", i+1, sys.NowUs())
		}
	}()

	for i := 0; i < rounds; i++ {
		time.Sleep(20 * time.Millisecond)
		hi.Set()
	}
	<-done
}

// runWaitAny reproduces spec.md §8 scenario 2: four timers of increasing
// duration, waited on one at a time via wait_any.
func runWaitAny(sys *crt.System) {
	owner := sys.NewTask("waiter", 0)
	durations := []uint64{3000, 4000, 5000, 6000}
	timers := make([]*crt.Timer, len(durations))
	var mask uint32
	for i, d := range durations {
		timers[i] = sys.NewTimer(owner, fmt.Sprintf("t%d", i))
		timers[i].Start(d, false)
		mask |= timers[i].BitMask()
	}

	for fired := 0; fired < len(durations); fired++ {
		owner.WaitAny(mask)
		for i, t := range timers {
			if owner.HasFired(t) {
				fmt.Printf("wait-any: timer %d fired at %dus\n", i, sys.NowUs())
				mask &^= t.BitMask()
			}
		}
	}
}

// runWaitAll reproduces spec.md §8 scenario 3: the same four timers, but
// waited on together — completes once, around the longest duration.
func runWaitAll(sys *crt.System) {
	owner := sys.NewTask("waiter", 0)
	durations := []uint64{3000, 4000, 5000, 6000}
	var mask uint32
	for i, d := range durations {
		timer := sys.NewTimer(owner, fmt.Sprintf("t%d", i))
		timer.Start(d, false)
		mask |= timer.BitMask()
	}

	start := sys.NowUs()
	owner.WaitAll(mask)
	fmt.Printf("wait-all: all four fired after %dus\n", sys.NowUs()-start)
}

type racingPair struct{ a, b int64 }

// runPoolRace reproduces spec.md §8 scenario 6: an unprotected pair drifts
// apart under concurrent updates, while a Pool-protected pair stays equal.
func runPoolRace(sys *crt.System) {
	const iterations = 20000
	var unprotected racingPair // deliberately raced: the point of this scenario is to show it drift
	pool := crt.NewPoolWith(racingPair{})

	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			for j := 0; j < iterations; j++ {
				unprotected.a += 2
				unprotected.b += 2

				pool.AtomicUpdate(func(p *racingPair) {
					p.a += 2
					p.b += 2
				})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	protected := pool.Read()
	fmt.Printf("pool-race: unprotected a=%d b=%d (diff=%d)\n", unprotected.a, unprotected.b, unprotected.a-unprotected.b)
	fmt.Printf("pool-race: protected   a=%d b=%d (diff=%d)\n", protected.a, protected.b, protected.a-protected.b)
}

// runMutexOrder reproduces spec.md §8 scenario 7: ascending lock order
// succeeds, descending panics.
func runMutexOrder(sys *crt.System) {
	task := sys.NewTask("locker", 0)
	low := crt.NewMutex(1)
	high := crt.NewMutex(2)

	low.Lock(task)
	high.Lock(task)
	high.Unlock(task)
	low.Unlock(task)
	fmt.Println("mutex-order: ascending lock(1); lock(2); unlock(2); unlock(1) succeeded")

	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("mutex-order: descending lock(2); lock(1) panicked as expected: %v\n", r)
			}
		}()
		high.Lock(task)
		defer high.Unlock(task)
		low.Lock(task)
		defer low.Unlock(task)
	}()
}

// runStopChunk reproduces spec.md §8 scenario 8: a long timer is stopped
// shortly after starting, then polled for 2.5s to confirm it never fires.
func runStopChunk(sys *crt.System) {
	owner := sys.NewTask("stopper", 0)
	timer := sys.NewTimer(owner, "long")

	timer.Start(2_000_000, false)
	time.Sleep(10 * time.Millisecond)
	timer.Stop()
	fmt.Println("stop-chunk: timer stopped 10ms after starting a 2s duration")

	deadline := time.Now().Add(2500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if owner.IsSet(timer) {
			fmt.Println("stop-chunk: FAILED — timer fired after being stopped")
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Println("stop-chunk: OK — no fire observed in 2.5s of polling")
}
