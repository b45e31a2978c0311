// Package memory provides a process-local persistence slot.
package memory

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
)

// Slot keeps payloads in a map; nothing survives the process
type Slot struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// New creates an empty in-memory slot
func New() *Slot {
	return &Slot{values: make(map[string][]byte)}
}

// Load returns a copy of the payload under key
func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.values[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key
func (s *Slot) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Writes reports how many times Save succeeded
func (s *Slot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Slot) Driver() persistence.Driver { return persistence.DriverMemory }

func (s *Slot) Close() error { return nil }
