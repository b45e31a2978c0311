package adapter

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// EventMeta is the part of a store event every adapter passes through as is.
// ContractPatch is set on contract updates.
type EventMeta struct {
	ID            string               `json:"id"`
	Type          registry.EventType   `json:"type"`
	RecordID      string               `json:"record_id"`
	Fields        []string             `json:"fields,omitempty"`
	ContractPatch *types.ContractPatch `json:"contract_patch,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

// DiscoveryEvent is a store event in discovery vocabulary. Patch holds the
// update's values for the fields the view shows.
type DiscoveryEvent struct {
	EventMeta
	Agent    *convert.DiscoveryAgent `json:"agent,omitempty"`
	Patch    *convert.DiscoveryPatch `json:"patch,omitempty"`
	Contract *convert.ContractView   `json:"contract,omitempty"`
}

// ManagementEvent is a store event in management vocabulary
type ManagementEvent struct {
	EventMeta
	Agent    *convert.ManagedAgent  `json:"agent,omitempty"`
	Patch    *convert.ManagedUpdate `json:"patch,omitempty"`
	Contract *convert.ContractView  `json:"contract,omitempty"`
}

// LedgerEvent is a store event in ledger vocabulary
type LedgerEvent struct {
	EventMeta
	Record   *convert.LedgerRecord `json:"record,omitempty"`
	Patch    *convert.LedgerPatch  `json:"patch,omitempty"`
	Contract *convert.ContractView `json:"contract,omitempty"`
}

func meta(ev registry.Event) EventMeta {
	m := EventMeta{
		ID:        ev.ID,
		Type:      ev.Type,
		RecordID:  ev.RecordID,
		Fields:    ev.Fields,
		Timestamp: ev.Timestamp,
	}
	if ev.CPatch != nil {
		p := ev.CPatch.Clone()
		m.ContractPatch = &p
	}
	return m
}

// shapePatch converts the event's agent patch, dropping it when the view
// shows none of the fields it sets
func shapePatch[P any](ev registry.Event, conv func(types.AgentPatch) (P, bool)) *P {
	if ev.Patch == nil {
		return nil
	}
	p, ok := conv(*ev.Patch)
	if !ok {
		return nil
	}
	return &p
}

func contractView(ev registry.Event) *convert.ContractView {
	if ev.Contract == nil {
		return nil
	}
	v := convert.ToContractView(*ev.Contract)
	return &v
}

func toDiscoveryEvent(ev registry.Event) (DiscoveryEvent, bool) {
	out := DiscoveryEvent{EventMeta: meta(ev), Patch: shapePatch(ev, convert.PatchToDiscovery), Contract: contractView(ev)}
	if ev.Record != nil {
		a := convert.ToDiscovery(*ev.Record)
		out.Agent = &a
	}
	return out, true
}

func toManagementEvent(ev registry.Event) (ManagementEvent, bool) {
	out := ManagementEvent{EventMeta: meta(ev), Patch: shapePatch(ev, convert.PatchToManagedUpdate), Contract: contractView(ev)}
	if ev.Record != nil {
		a := convert.ToManaged(*ev.Record)
		out.Agent = &a
	}
	return out, true
}

func toLedgerEvent(ev registry.Event) (LedgerEvent, bool) {
	out := LedgerEvent{EventMeta: meta(ev), Patch: shapePatch(ev, convert.PatchToLedger), Contract: contractView(ev)}
	if ev.Record != nil {
		r := convert.ToLedger(*ev.Record)
		out.Record = &r
	}
	return out, true
}

// Option configures an adapter
type Option func(*options)

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

// WithLogger sets the adapter logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = func() time.Time { return now().UTC() } }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
