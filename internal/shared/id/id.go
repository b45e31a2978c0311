// Package id provides prefixed, lexicographically sortable identifiers.
//
// Record ids are ULIDs carrying a type prefix (agent_*, ctr_*) so that logs
// and snapshots stay readable. Generation draws from monotonic entropy,
// which keeps ids unique and ordered even within one millisecond.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// AgentID identifies an agent record
type AgentID string

// ContractID identifies a contract record
type ContractID string

const (
	AgentPrefix    = "agent"
	ContractPrefix = "ctr"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests pass a deterministic reader to get reproducible ids.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// WithClock overrides the time source used for the ULID timestamp
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	return g
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewAgentID generates an agent id
func (g *Generator) NewAgentID() AgentID {
	return AgentID(g.GenerateWithPrefix(AgentPrefix))
}

// NewContractID generates a contract id
func (g *Generator) NewContractID() ContractID {
	return ContractID(g.GenerateWithPrefix(ContractPrefix))
}

func (id AgentID) String() string    { return string(id) }
func (id ContractID) String() string { return string(id) }

// Split separates a prefixed id into prefix and ULID part
func Split(s string) (prefix, raw string) {
	i := strings.LastIndexByte(s, '_')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

// IsValid reports whether s is a ULID, with or without prefix
func IsValid(s string) bool {
	_, raw := Split(s)
	_, err := ulid.Parse(raw)
	return err == nil
}

// Timestamp extracts the creation time encoded in an id
func Timestamp(s string) (time.Time, error) {
	_, raw := Split(s)
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
