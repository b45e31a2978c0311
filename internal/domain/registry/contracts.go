package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// CreateContract binds a new contract to an existing agent
func (s *Store) CreateContract(ctx context.Context, in types.ContractInput) (types.Contract, error) {
	s.mu.Lock()
	if _, ok := s.agents[in.AgentID]; !ok {
		s.mu.Unlock()
		return types.Contract{}, &ValidationError{Field: "agent_id", Reason: "unknown agent " + in.AgentID}
	}

	now := s.now()
	c := types.Contract{
		AgentID:     in.AgentID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Terms:       in.Terms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status == "" {
		c.Status = types.ContractDraft
	}
	if in.Ledger != nil {
		c.Ledger = *in.Ledger
	}
	c = c.Clone()
	if err := validateContract(c); err != nil {
		s.mu.Unlock()
		return types.Contract{}, err
	}

	c.ID = string(s.ids.NewContractID())
	for {
		if _, taken := s.contracts[c.ID]; !taken {
			break
		}
		c.ID = string(s.ids.NewContractID())
	}
	s.contracts[c.ID] = c
	s.contractOrder = append(s.contractOrder, c.ID)
	stored := c.Clone()
	t := s.enqueueLocked(ctx, Event{Type: EventContractAdded, RecordID: c.AgentID, Contract: &stored, Timestamp: c.CreatedAt})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("contract", "create")
	s.updateGauges()
	s.logger.Debug("Contract created", zap.String("id", c.ID), zap.String("agent_id", c.AgentID))

	s.dispatch(ctx, t)
	return c.Clone(), nil
}

// UpdateContract merge-patches a contract. It returns false when no such
// contract exists.
func (s *Store) UpdateContract(ctx context.Context, id string, patch types.ContractPatch) (bool, error) {
	s.mu.Lock()
	current, ok := s.contracts[id]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	next := patch.Apply(current)
	if err := validateContract(next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	next.UpdatedAt = s.stamp(current.UpdatedAt)
	s.contracts[id] = next
	stored := next.Clone()
	t := s.enqueueLocked(ctx, Event{
		Type:      EventContractUpdated,
		RecordID:  next.AgentID,
		Contract:  &stored,
		CPatch:    &patch,
		Timestamp: next.UpdatedAt,
	})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("contract", "update")

	s.dispatch(ctx, t)
	return true, nil
}

// DeleteContract removes a contract
func (s *Store) DeleteContract(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed, ok := s.contracts[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.contracts, id)
	s.contractOrder = removeID(s.contractOrder, id)
	t := s.enqueueLocked(ctx, Event{Type: EventContractDeleted, RecordID: removed.AgentID, Contract: &removed})
	w := s.prepareWriteLocked()
	s.mu.Unlock()

	s.persist(ctx, w)
	s.metrics.RecordMutation("contract", "delete")
	s.updateGauges()

	s.dispatch(ctx, t)
	return true
}

// GetContract returns a copy of the contract with id
func (s *Store) GetContract(id string) (types.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return types.Contract{}, false
	}
	return c.Clone(), true
}

// ListContracts returns every contract in creation order
func (s *Store) ListContracts() []types.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Contract, 0, len(s.contractOrder))
	for _, id := range s.contractOrder {
		out = append(out, s.contracts[id].Clone())
	}
	return out
}

// ContractsFor returns the contracts bound to agentID, including those
// whose agent has since been deleted
func (s *Store) ContractsFor(agentID string) []types.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Contract, 0)
	for _, id := range s.contractOrder {
		if c := s.contracts[id]; c.AgentID == agentID {
			out = append(out, c.Clone())
		}
	}
	return out
}

func validateContract(c types.Contract) error {
	if err := utils.ValidateText(c.Name, "name", utils.MaxNameLength, true); err != nil {
		return invalid("name", err)
	}
	if err := utils.ValidateText(c.Description, "description", utils.MaxDescriptionLength, false); err != nil {
		return invalid("description", err)
	}
	if !c.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown contract status " + string(c.Status)}
	}
	return nil
}
