package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/memory"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

const defaultPersistTimeout = 5 * time.Second

// Store is the authoritative in-process agent registry
type Store struct {
	mu            sync.RWMutex
	agents        map[string]types.Agent
	order         []string
	contracts     map[string]types.Contract
	contractOrder []string
	seq           uint64

	slot           persistence.Slot
	key            string
	persistTimeout time.Duration
	persistMu      sync.Mutex
	persistedSeq   uint64

	dispatchMu sync.Mutex
	turn       *sync.Cond
	subs       []subscription
	pending    map[uint64]Event
	eventSeq   uint64
	delivered  uint64

	seed    []types.AgentInput
	ids     *id.Generator
	now     func() time.Time
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables metrics collection
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = metrics }
}

// WithClock overrides the time source for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = func() time.Time { return now().UTC() } }
}

// WithIDGenerator overrides id generation
func WithIDGenerator(gen *id.Generator) Option {
	return func(s *Store) { s.ids = gen }
}

// WithSeed replaces the records loaded when the slot holds no snapshot
func WithSeed(seed []types.AgentInput) Option {
	return func(s *Store) { s.seed = seed }
}

// WithSnapshotKey overrides the slot key
func WithSnapshotKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPersistTimeout bounds each slot write
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// Open builds a store on slot, restoring the last snapshot or falling back
// to the seed set. A nil slot keeps everything in memory.
func Open(ctx context.Context, slot persistence.Slot, opts ...Option) *Store {
	if slot == nil {
		slot = memory.New()
	}
	s := &Store{
		agents:         make(map[string]types.Agent),
		contracts:      make(map[string]types.Contract),
		pending:        make(map[uint64]Event),
		slot:           slot,
		key:            DefaultSnapshotKey,
		persistTimeout: defaultPersistTimeout,
		seed:           DefaultSeed(),
		ids:            id.Default(),
		now:            func() time.Time { return time.Now().UTC() },
		logger:         zap.NewNop(),
	}
	s.turn = sync.NewCond(&s.dispatchMu)
	for _, opt := range opts {
		opt(s)
	}

	s.restore(ctx)
	return s
}

// Close drops every subscriber. The slot belongs to the caller.
func (s *Store) Close() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.subs = nil
}

func (s *Store) restore(ctx context.Context) {
	start := time.Now()
	data, err := s.slot.Load(ctx, s.key)
	s.metrics.RecordPersistence(string(s.slot.Driver()), "load", ignoreNotFound(err), time.Since(start))

	switch {
	case errors.Is(err, persistence.ErrNotFound):
		s.logger.Info("No snapshot found, seeding registry", zap.Int("seed_records", len(s.seed)))
	case err != nil:
		s.metrics.RecordPersistenceError("load")
		s.logger.Warn("Failed to load snapshot, seeding registry", zap.Error(err))
	default:
		snap, err := DecodeSnapshot(data)
		if err == nil {
			s.mu.Lock()
			s.applySnapshotLocked(snap)
			s.mu.Unlock()
			s.logger.Info("Registry restored from snapshot",
				zap.Int("records", len(snap.Records)),
				zap.Int("contracts", len(snap.Contracts)),
				zap.String("driver", string(s.slot.Driver())),
			)
			s.updateGauges()
			return
		}
		s.metrics.RecordPersistenceError("decode")
		s.logger.Warn("Snapshot is corrupt, seeding registry", zap.Error(err))
	}

	s.mu.Lock()
	s.resetLocked()
	for _, in := range s.seed {
		agent, err := s.buildAgent(in)
		if err != nil {
			s.logger.Warn("Skipping invalid seed record", zap.String("name", in.Name), zap.Error(err))
			continue
		}
		s.insertLocked(agent)
	}
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.updateGauges()
}

func ignoreNotFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Store) resetLocked() {
	s.agents = make(map[string]types.Agent)
	s.order = nil
	s.contracts = make(map[string]types.Contract)
	s.contractOrder = nil
}

func (s *Store) applySnapshotLocked(snap Snapshot) {
	s.resetLocked()
	for _, e := range snap.Records {
		s.insertLocked(normalizeAgent(e.Value))
	}
	for _, e := range snap.Contracts {
		s.contracts[e.ID] = e.Value.Clone()
		s.contractOrder = append(s.contractOrder, e.ID)
	}
}

func (s *Store) insertLocked(a types.Agent) {
	s.agents[a.ID] = a
	s.order = append(s.order, a.ID)
}

// Create validates in, stores a new agent and emits record_added
func (s *Store) Create(ctx context.Context, in types.AgentInput) (types.Agent, error) {
	s.mu.Lock()
	agent, err := s.buildAgent(in)
	if err != nil {
		s.mu.Unlock()
		return types.Agent{}, err
	}
	s.insertLocked(agent)
	stored := agent.Clone()
	t := s.enqueueLocked(ctx, Event{Type: EventRecordAdded, RecordID: agent.ID, Record: &stored, Timestamp: agent.CreatedAt})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("agent", "create")
	s.updateGauges()
	s.logger.Debug("Agent created", zap.String("id", agent.ID), zap.String("name", agent.Name))

	s.dispatch(ctx, t)
	return agent.Clone(), nil
}

// buildAgent applies defaults to in and assigns identity; callers hold mu
func (s *Store) buildAgent(in types.AgentInput) (types.Agent, error) {
	now := s.now()
	agent := types.Agent{
		Name:         in.Name,
		Description:  in.Description,
		Version:      in.Version,
		Type:         in.Type,
		Capabilities: in.Capabilities,
		Status:       in.Status,
		Config: types.AgentConfig{
			UserBinding: types.UserBinding{
				Method:              types.BindingNone,
				Strength:            types.StrengthNone,
				VerificationCadence: types.DefaultVerificationCadence,
			},
		},
		Metadata:  types.AgentMetadata{SecurityLevel: types.DefaultSecurityLevel},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if agent.Version == "" {
		agent.Version = types.DefaultVersion
	}
	if agent.Type == "" {
		agent.Type = types.DefaultType
	}
	if agent.Status == "" {
		agent.Status = types.DefaultStatus
	}
	if in.Config != nil {
		agent.Config = *in.Config
	}
	if in.Ledger != nil {
		agent.Ledger = *in.Ledger
	}
	if in.Stats != nil {
		agent.Stats = in.Stats
	}
	if in.Metadata != nil {
		agent.Metadata = *in.Metadata
		if agent.Metadata.SecurityLevel == "" {
			agent.Metadata.SecurityLevel = types.DefaultSecurityLevel
		}
	}

	agent = normalizeAgent(agent.Clone())
	if err := validateAgent(agent); err != nil {
		return types.Agent{}, err
	}

	agent.ID = string(s.ids.NewAgentID())
	for {
		if _, taken := s.agents[agent.ID]; !taken {
			break
		}
		agent.ID = string(s.ids.NewAgentID())
	}
	return agent, nil
}

// Update merge-patches the agent with id. It returns false when no such
// agent exists and an error when the patched record would be invalid.
func (s *Store) Update(ctx context.Context, id string, patch types.AgentPatch) (bool, error) {
	return s.UpdateFunc(ctx, id, func(types.Agent) (types.AgentPatch, error) {
		return patch, nil
	})
}

// UpdateFunc derives a patch from the current record and applies it under
// the same write lock, so read-modify-write callers never lose a concurrent
// update. fn gets a copy of the record and must not call back into the
// store; an error from fn aborts the update and is returned as is.
func (s *Store) UpdateFunc(ctx context.Context, id string, fn func(types.Agent) (types.AgentPatch, error)) (bool, error) {
	s.mu.Lock()
	current, ok := s.agents[id]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}

	patch, err := fn(current.Clone())
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	next := normalizeAgent(patch.Apply(current))
	if err := validateAgent(next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	next.UpdatedAt = s.stamp(current.UpdatedAt)
	s.agents[id] = next

	stored := next.Clone()
	t := s.enqueueLocked(ctx, Event{
		Type:      EventRecordUpdated,
		RecordID:  id,
		Record:    &stored,
		Patch:     &patch,
		Fields:    patch.Fields(),
		Timestamp: next.UpdatedAt,
	})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("agent", "update")
	s.updateGauges()

	s.dispatch(ctx, t)
	return true, nil
}

// Delete removes the agent with id and emits record_deleted.
// Contracts referencing it are kept.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed, ok := s.agents[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.agents, id)
	s.order = removeID(s.order, id)
	t := s.enqueueLocked(ctx, Event{Type: EventRecordDeleted, RecordID: id, Record: &removed})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("agent", "delete")
	s.updateGauges()

	s.dispatch(ctx, t)
	return true
}

// Get returns a copy of the agent with id
func (s *Store) Get(id string) (types.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return types.Agent{}, false
	}
	return a.Clone(), true
}

// List returns copies of all agents in creation order
func (s *Store) List() []types.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Agent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.agents[id].Clone())
	}
	return out
}

// Len returns the number of agents
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agents)
}

// Search returns agents whose text fields contain query
func (s *Store) Search(query string) []types.Agent {
	return SearchAgents(s.List(), query)
}

// Filter returns agents matching every predicate in f
func (s *Store) Filter(f types.AgentFilter) []types.Agent {
	return FilterAgents(s.List(), f)
}

// Seed creates every input through Create, stopping at the first invalid one
func (s *Store) Seed(ctx context.Context, inputs []types.AgentInput) ([]types.Agent, error) {
	created := make([]types.Agent, 0, len(inputs))
	for _, in := range inputs {
		a, err := s.Create(ctx, in)
		if err != nil {
			return created, err
		}
		created = append(created, a)
	}
	return created, nil
}

// stamp returns a timestamp strictly after prev
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (s *Store) updateGauges() {
	if s.metrics == nil {
		return
	}
	s.mu.RLock()
	agents, contracts := len(s.agents), len(s.contracts)
	s.mu.RUnlock()
	s.metrics.SetRecordCounts(agents, contracts)
}

func normalizeAgent(a types.Agent) types.Agent {
	a.Capabilities = types.DedupeStrings(a.Capabilities)
	a.Config.Permissions = types.DedupeStrings(a.Config.Permissions)
	a.Metadata.Tags = types.DedupeStrings(a.Metadata.Tags)
	a.Metadata.Categories = types.DedupeStrings(a.Metadata.Categories)
	a.Metadata.Compliance = types.DedupeStrings(a.Metadata.Compliance)
	a.Ledger = a.Ledger.Normalize()
	return a
}

func validateAgent(a types.Agent) error {
	if err := utils.ValidateText(a.Name, "name", utils.MaxNameLength, true); err != nil {
		return invalid("name", err)
	}
	if err := utils.ValidateText(a.Description, "description", utils.MaxDescriptionLength, false); err != nil {
		return invalid("description", err)
	}
	if err := utils.ValidateText(a.Version, "version", utils.MaxVersionLength, false); err != nil {
		return invalid("version", err)
	}
	if err := utils.ValidateText(a.Type, "type", utils.MaxTypeLength, false); err != nil {
		return invalid("type", err)
	}
	if !a.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(a.Status)}
	}
	if err := utils.ValidateTags(a.Capabilities, "capabilities"); err != nil {
		return invalid("capabilities", err)
	}
	if err := utils.ValidateTags(a.Config.Permissions, "permissions"); err != nil {
		return invalid("permissions", err)
	}
	if err := utils.ValidateTags(a.Metadata.Tags, "tags"); err != nil {
		return invalid("tags", err)
	}
	if a.Stats != nil && (a.Stats.Rating < 0 || a.Stats.Rating > 5) {
		return &ValidationError{Field: "stats.rating", Reason: "must be between 0 and 5"}
	}
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
