// internal/processor/supervisor.go
package processor

import (
	"errors"
	"log"
	"os/exec"
	"sync"
)

var (
	ErrAlreadyRunning = errors.New("processor service already running")
	ErrNotRunning     = errors.New("processor service not running")
)

type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Supervisor owns the scoring processor subprocess. All lifecycle state
// lives behind the mutex; the exit of the child always resets the state to
// stopped, whether it crashed or was asked to stop.
type Supervisor struct {
	mu    sync.Mutex
	state State
	cmd   *exec.Cmd

	python string
	script string
}

func NewSupervisor(python, script string) *Supervisor {
	return &Supervisor{
		state:  StateStopped,
		python: python,
		script: script,
	}
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the processor. Only valid from the stopped state.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = StateStarting
	s.mu.Unlock()

	cmd := exec.Command(s.python, s.script)
	if err := cmd.Start(); err != nil {
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.cmd = cmd
	s.state = StateRunning
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		if err != nil {
			log.Printf("processor service exited: %v", err)
		}
		s.mu.Lock()
		s.cmd = nil
		s.state = StateStopped
		s.mu.Unlock()
	}()

	return nil
}

// Stop signals the processor to terminate. The waiter goroutine spawned by
// Start observes the exit and moves the state back to stopped.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.cmd == nil {
		return ErrNotRunning
	}
	s.state = StateStopping
	if err := s.cmd.Process.Kill(); err != nil {
		s.state = StateRunning
		return err
	}
	return nil
}
