package lockorder

import (
	"strings"
	"testing"
)

func TestValidateAcceptsAcyclicOrder(t *testing.T) {
	var g Graph
	g.Name(1, "ipc")
	g.Name(2, "pool")
	g.Name(3, "log")
	g.Declare(1, 2)
	g.Declare(2, 3)

	order, err := g.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[uint32]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos[1] >= pos[2] || pos[2] >= pos[3] {
		t.Fatalf("expected order 1 < 2 < 3, got %v", order)
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	var g Graph
	g.Name(1, "ipc")
	g.Name(2, "pool")
	g.Declare(1, 2)
	g.Declare(2, 1) // contradicts the first declaration

	if _, err := g.Validate(); err == nil {
		t.Fatal("expected an error for contradictory lock order")
	}
}

func TestMustValidatePanicsOnCycle(t *testing.T) {
	var g Graph
	g.Declare(1, 2)
	g.Declare(2, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustValidate to panic on a cycle")
		}
	}()
	MustValidate(&g)
}

func TestNameOnlyRegistersOrphanNode(t *testing.T) {
	var g Graph
	g.Name(9, "orphan")
	order, err := g.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 1 || order[0] != 9 {
		t.Fatalf("expected [9], got %v", order)
	}
}

// TestValidateNamesCycleByLabel checks that a contradiction's error message
// names the declared mutexes rather than bare IDs, since that's the whole
// point of Graph.Name: a developer staring at a failed build should see
// "ipc" and "pool", not "1" and "2".
func TestValidateNamesCycleByLabel(t *testing.T) {
	var g Graph
	g.Name(1, "ipc")
	g.Name(2, "pool")
	g.Declare(1, 2)
	g.Declare(2, 1)

	_, err := g.Validate()
	if err == nil {
		t.Fatal("expected an error for contradictory lock order")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ipc(1)") || !strings.Contains(msg, "pool(2)") {
		t.Fatalf("expected cycle message to name both mutexes, got %q", msg)
	}
}

// TestValidateThreeWayCycle exercises a longer cycle than the minimal
// two-node case, the shape a real program gets from an accidental
// log-before-ipc declaration sneaking in alongside ipc-before-pool and
// pool-before-log.
func TestValidateThreeWayCycle(t *testing.T) {
	var g Graph
	g.Name(1, "ipc")
	g.Name(2, "pool")
	g.Name(3, "log")
	g.Declare(1, 2) // ipc before pool
	g.Declare(2, 3) // pool before log
	g.Declare(3, 1) // log before ipc — closes the cycle

	if _, err := g.Validate(); err == nil {
		t.Fatal("expected an error for a three-way contradictory lock order")
	}
}
