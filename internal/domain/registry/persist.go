package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// pendingWrite is a snapshot captured under mu together with its sequence
type pendingWrite struct {
	seq  uint64
	snap Snapshot
}

// prepareWriteLocked bumps the mutation sequence and captures the state
// that must reach the slot. Callers hold mu.
func (s *Store) prepareWriteLocked() pendingWrite {
	s.seq++
	return pendingWrite{seq: s.seq, snap: s.snapshotLocked()}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Records:   make([]Entry[types.Agent], 0, len(s.order)),
		Contracts: make([]Entry[types.Contract], 0, len(s.contractOrder)),
		Timestamp: s.now().UnixMilli(),
	}
	for _, id := range s.order {
		snap.Records = append(snap.Records, Entry[types.Agent]{ID: id, Value: s.agents[id].Clone()})
	}
	for _, id := range s.contractOrder {
		snap.Contracts = append(snap.Contracts, Entry[types.Contract]{ID: id, Value: s.contracts[id].Clone()})
	}
	return snap
}

// persist writes w unless a newer state already reached the slot. Failures
// are logged and counted; the in-memory mutation stands either way.
func (s *Store) persist(ctx context.Context, w pendingWrite) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if w.seq <= s.persistedSeq {
		return
	}

	data, err := EncodeSnapshot(w.snap)
	if err != nil {
		s.metrics.RecordPersistenceError("encode")
		s.logger.Error("Failed to encode snapshot", zap.Error(err))
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	start := time.Now()
	err = s.slot.Save(wctx, s.key, data)
	s.metrics.RecordPersistence(string(s.slot.Driver()), "save", err, time.Since(start))
	if err != nil {
		s.metrics.RecordPersistenceError("save")
		s.logger.Error("Failed to persist snapshot",
			zap.String("driver", string(s.slot.Driver())),
			zap.Uint64("seq", w.seq),
			zap.Error(err),
		)
		return
	}
	s.persistedSeq = w.seq
}

// Export encodes the current state in the persisted snapshot format
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()
	return EncodeSnapshot(snap)
}

// Import replaces the whole state with an encoded snapshot, persists it
// and emits snapshot_imported. Invalid data leaves the store untouched.
func (s *Store) Import(ctx context.Context, data []byte) error {
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	for _, e := range snap.Records {
		if err := validateAgent(normalizeAgent(e.Value)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.applySnapshotLocked(snap)
	t := s.enqueueLocked(ctx, Event{Type: EventSnapshotImported})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("snapshot", "import")
	s.updateGauges()
	s.logger.Info("Snapshot imported",
		zap.Int("records", len(snap.Records)),
		zap.Int("contracts", len(snap.Contracts)),
	)

	s.dispatch(ctx, t)
	return nil
}
