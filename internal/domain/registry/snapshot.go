package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// DefaultSnapshotKey is the slot key the store persists under
const DefaultSnapshotKey = "agent-registry:snapshot"

// ErrCorruptSnapshot wraps every decode failure
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Entry is an [id, value] pair, encoded as a two-element JSON array
type Entry[T any] struct {
	ID    string
	Value T
}

func (e Entry[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Value})
}

func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Value); err != nil {
		return fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return nil
}

// Snapshot is the persisted form of the whole store
type Snapshot struct {
	Records   []Entry[types.Agent]    `json:"records"`
	Contracts []Entry[types.Contract] `json:"contracts"`
	Timestamp int64                   `json:"timestamp"`
}

// EncodeSnapshot serializes snap
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	if snap.Records == nil {
		snap.Records = []Entry[types.Agent]{}
	}
	if snap.Contracts == nil {
		snap.Contracts = []Entry[types.Contract]{}
	}
	data, err := sonic.ConfigStd.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and checks a persisted snapshot.
// Any structural problem is reported as ErrCorruptSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Records == nil {
		return Snapshot{}, fmt.Errorf("%w: missing records", ErrCorruptSnapshot)
	}

	seen := make(map[string]struct{}, len(snap.Records))
	for i, e := range snap.Records {
		if e.ID == "" || e.ID != e.Value.ID {
			return Snapshot{}, fmt.Errorf("%w: record %d has mismatched id %q", ErrCorruptSnapshot, i, e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate record %s", ErrCorruptSnapshot, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	for i, e := range snap.Contracts {
		if e.ID == "" || e.ID != e.Value.ID {
			return Snapshot{}, fmt.Errorf("%w: contract %d has mismatched id %q", ErrCorruptSnapshot, i, e.ID)
		}
	}
	return snap, nil
}
