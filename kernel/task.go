package kernel

import "runtime"

// Task is a goroutine with the metadata a firmware task carries: a name for
// diagnostics and a priority that, on real hardware, the scheduler would use
// to preempt lower-priority tasks. The simulation does not implement
// priority preemption (the Go scheduler is cooperative-fair, not
// priority-driven); priority is retained only so code ported from a real
// target compiles and behaves sensibly under Go's scheduler too.
type Task struct {
	Name     string
	Priority int
	done     chan struct{}
}

// TaskConfig mirrors the fields a firmware task-create call takes.
type TaskConfig struct {
	Name      string
	Priority  int
	StackSize int // retained for parity with osThreadNew; unused by the simulation
}

// StartTask launches fn on a new goroutine and returns a handle describing
// it. fn is the task's body; it runs until it returns.
func StartTask(cfg TaskConfig, fn func()) *Task {
	t := &Task{
		Name:     cfg.Name,
		Priority: cfg.Priority,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		fn()
	}()
	return t
}

// Join blocks until the task's body has returned. Intended for tests and
// orderly shutdown; production tasks normally run forever.
func (t *Task) Join() {
	<-t.done
}

// Yield surrenders the current goroutine's time slice, standing in for
// osThreadYield / taskYIELD.
func Yield() {
	runtime.Gosched()
}
