// internal/processor/supervisor_test.go
package processor

import (
	"errors"
	"testing"
	"time"
)

func waitForState(t *testing.T, s *Supervisor, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for state %s, still %s", want, s.State())
}

func TestSupervisorStartStop(t *testing.T) {
	s := NewSupervisor("sleep", "30")

	if s.State() != StateStopped {
		t.Fatalf("Expected initial state stopped, got %s", s.State())
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.State() != StateRunning {
		t.Errorf("Expected state running after start, got %s", s.State())
	}

	if err := s.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning on second start, got %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitForState(t, s, StateStopped)

	if err := s.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning when already stopped, got %v", err)
	}
}

func TestSupervisorSelfExitResetsState(t *testing.T) {
	s := NewSupervisor("sleep", "0.05")

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// The child exits on its own; the waiter must reset the state.
	waitForState(t, s, StateStopped)

	// A fresh start is allowed again.
	if err := s.Start(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	waitForState(t, s, StateStopped)
}

func TestSupervisorStartFailure(t *testing.T) {
	s := NewSupervisor("/no/such/binary", "script.py")

	if err := s.Start(); err == nil {
		t.Fatal("Expected start of a missing binary to fail")
	}
	if s.State() != StateStopped {
		t.Errorf("Expected state reset to stopped after failed start, got %s", s.State())
	}

	if err := s.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning after failed start, got %v", err)
	}
}
