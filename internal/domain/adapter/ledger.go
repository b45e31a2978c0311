package adapter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/providers/ledger"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// Ledger registers agents and their contracts on a ledger through a Gateway
type Ledger struct {
	store   *registry.Store
	gateway ledger.Gateway
	hasher  *utils.Hasher
	hub     hub[LedgerEvent]
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedger creates a ledger adapter over store
func NewLedger(store *registry.Store, gateway ledger.Gateway, opts ...Option) *Ledger {
	o := buildOptions(opts)
	l := &Ledger{
		store:   store,
		gateway: gateway,
		hasher:  utils.DefaultHasher().WithDomain("ledger-content"),
		logger:  o.logger,
		now:     o.now,
	}
	l.hub.name = "ledger"
	l.hub.logger = o.logger
	l.hub.attach(store, toLedgerEvent)
	return l
}

// Close detaches the adapter from the store
func (l *Ledger) Close() {
	l.hub.detach()
}

// ContentHash is the digest anchored for an agent. It covers the fields
// that identify what the agent is, not its runtime state.
func (l *Ledger) ContentHash(a types.Agent) (string, error) {
	return l.hasher.HashCanonical(map[string]any{
		"id":           a.ID,
		"name":         a.Name,
		"version":      a.Version,
		"type":         a.Type,
		"capabilities": a.Capabilities,
		"permissions":  a.Config.Permissions,
	})
}

// Register anchors the agent and records the receipt on it
func (l *Ledger) Register(ctx context.Context, id string) (convert.LedgerRecord, error) {
	a, ok := l.store.Get(id)
	if !ok {
		return convert.LedgerRecord{}, agentNotFound(id)
	}

	hash, err := l.ContentHash(a)
	if err != nil {
		return convert.LedgerRecord{}, fmt.Errorf("hash agent %s: %w", id, err)
	}

	receipt, err := l.gateway.Anchor(ctx, ledger.AnchorRequest{
		Kind:        ledger.KindAgent,
		SubjectID:   id,
		ContentHash: hash,
		NetworkID:   a.Ledger.NetworkID,
	})
	if err != nil {
		l.logger.Warn("Ledger anchor failed", zap.String("id", id), zap.Error(err))
		return convert.LedgerRecord{}, err
	}

	syncedAt := l.now()
	anchor := types.LedgerAnchor{
		OnChain:            true,
		NetworkID:          receipt.NetworkID,
		BlockHeight:        receipt.BlockHeight,
		TxHash:             receipt.TxHash,
		VerificationStatus: receipt.Status,
		LastSyncAt:         &syncedAt,
		SyncStatus:         types.SyncSynced,
	}
	if err := l.setAnchor(ctx, id, anchor); err != nil {
		return convert.LedgerRecord{}, err
	}

	l.logger.Info("Agent registered on ledger",
		zap.String("id", id),
		zap.String("tx", receipt.TxHash),
		zap.Uint64("block", receipt.BlockHeight),
	)
	return l.Get(id)
}

// Sync refreshes the anchor from the ledger's view of its transaction.
// The result is folded into the anchor current at write time, so a sync
// racing a re-registration or an unregister never restores a stale anchor.
func (l *Ledger) Sync(ctx context.Context, id string) (convert.LedgerRecord, error) {
	a, ok := l.store.Get(id)
	if !ok {
		return convert.LedgerRecord{}, agentNotFound(id)
	}
	if !a.Ledger.OnChain {
		return convert.LedgerRecord{}, fmt.Errorf("sync %s: %w", id, ErrNotRegistered)
	}

	txHash := a.Ledger.TxHash
	receipt, statusErr := l.gateway.Status(ctx, txHash)
	if statusErr != nil {
		l.logger.Warn("Ledger sync failed", zap.String("id", id), zap.Error(statusErr))
	}

	syncedAt := l.now()
	ok, err := l.store.UpdateFunc(ctx, id, func(current types.Agent) (types.AgentPatch, error) {
		if !current.Ledger.OnChain || current.Ledger.TxHash != txHash {
			return types.AgentPatch{}, fmt.Errorf("sync %s: %w", id, ErrAnchorChanged)
		}
		anchor := current.Ledger
		anchor.LastSyncAt = &syncedAt
		if statusErr != nil {
			anchor.SyncStatus = types.SyncFailed
		} else {
			anchor.BlockHeight = receipt.BlockHeight
			anchor.VerificationStatus = receipt.Status
			anchor.SyncStatus = types.SyncSynced
		}
		return types.AgentPatch{Ledger: &anchor}, nil
	})
	if err != nil {
		return convert.LedgerRecord{}, err
	}
	if !ok {
		return convert.LedgerRecord{}, agentNotFound(id)
	}
	if statusErr != nil {
		return convert.LedgerRecord{}, statusErr
	}
	return l.Get(id)
}

// Unregister drops the agent's anchor
func (l *Ledger) Unregister(ctx context.Context, id string) (convert.LedgerRecord, error) {
	a, ok := l.store.Get(id)
	if !ok {
		return convert.LedgerRecord{}, agentNotFound(id)
	}
	if !a.Ledger.OnChain {
		return convert.LedgerRecord{}, fmt.Errorf("unregister %s: %w", id, ErrNotRegistered)
	}
	if err := l.setAnchor(ctx, id, types.LedgerAnchor{}); err != nil {
		return convert.LedgerRecord{}, err
	}
	l.logger.Info("Agent unregistered from ledger", zap.String("id", id))
	return l.Get(id)
}

func (l *Ledger) setAnchor(ctx context.Context, id string, anchor types.LedgerAnchor) error {
	ok, err := l.store.Update(ctx, id, types.AgentPatch{Ledger: &anchor})
	if err != nil {
		return err
	}
	if !ok {
		return agentNotFound(id)
	}
	return nil
}

// Get returns the ledger view of one agent
func (l *Ledger) Get(id string) (convert.LedgerRecord, error) {
	a, ok := l.store.Get(id)
	if !ok {
		return convert.LedgerRecord{}, agentNotFound(id)
	}
	return convert.ToLedger(a), nil
}

// ListRegistered returns every agent anchored on chain
func (l *Ledger) ListRegistered() []convert.LedgerRecord {
	onChain := true
	return convert.Map(l.store.Filter(types.AgentFilter{OnChain: &onChain}), convert.ToLedger)
}

// DeployContract creates a contract for agentID. When the agent is on chain
// the contract is anchored on the same network first.
func (l *Ledger) DeployContract(ctx context.Context, agentID string, in types.ContractInput) (convert.ContractView, error) {
	a, ok := l.store.Get(agentID)
	if !ok {
		return convert.ContractView{}, agentNotFound(agentID)
	}
	in.AgentID = agentID

	if a.Ledger.OnChain {
		hash, err := l.hasher.HashCanonical(in)
		if err != nil {
			return convert.ContractView{}, fmt.Errorf("hash contract: %w", err)
		}
		receipt, err := l.gateway.Anchor(ctx, ledger.AnchorRequest{
			Kind:        ledger.KindContract,
			SubjectID:   agentID,
			ContentHash: hash,
			NetworkID:   a.Ledger.NetworkID,
		})
		if err != nil {
			return convert.ContractView{}, err
		}
		syncedAt := l.now()
		in.Ledger = &types.LedgerAnchor{
			OnChain:            true,
			NetworkID:          receipt.NetworkID,
			BlockHeight:        receipt.BlockHeight,
			TxHash:             receipt.TxHash,
			VerificationStatus: receipt.Status,
			LastSyncAt:         &syncedAt,
			SyncStatus:         types.SyncSynced,
		}
	}

	c, err := l.store.CreateContract(ctx, in)
	if err != nil {
		return convert.ContractView{}, err
	}
	return convert.ToContractView(c), nil
}

// Contracts returns the contracts bound to agentID
func (l *Ledger) Contracts(agentID string) []convert.ContractView {
	return convert.Map(l.store.ContractsFor(agentID), convert.ToContractView)
}

// Subscribe registers fn for every store event. Writes made from fn must
// use the ctx it receives.
func (l *Ledger) Subscribe(fn func(context.Context, LedgerEvent)) SubscriptionID {
	return l.hub.subscribe(fn)
}

// Unsubscribe removes a listener
func (l *Ledger) Unsubscribe(id SubscriptionID) bool {
	return l.hub.unsubscribe(id)
}
