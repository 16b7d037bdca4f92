package rtlog

import "testing"

func TestNamedReturnsSameInstance(t *testing.T) {
	a := Named("test-subsystem-a")
	b := Named("test-subsystem-a")
	if a != b {
		t.Fatal("expected Named to return the same *Logger for the same name")
	}
}

func TestNamedDistinctNamesDistinctInstances(t *testing.T) {
	a := Named("test-subsystem-b")
	b := Named("test-subsystem-c")
	if a == b {
		t.Fatal("expected distinct names to get distinct loggers")
	}
}

func TestVDisabledByDefaultAboveZero(t *testing.T) {
	l := Named("test-subsystem-d")
	if l.V(5) {
		t.Fatal("expected V(5) to be disabled without SetLevel")
	}
}

func TestLevelSetParsesInteger(t *testing.T) {
	var lvl Level
	if err := lvl.Set("3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if lvl.String() != "3" {
		t.Fatalf("expected String() to round-trip, got %q", lvl.String())
	}
}
