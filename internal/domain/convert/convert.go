// Package convert maps canonical registry records to and from the narrower
// shapes used by the discovery, management and ledger surfaces.
//
// Every function is pure. Canonical to view keeps every field the view
// declares; view to canonical fills the rest with the registry's create
// defaults.
package convert

import (
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// ToDiscovery projects an agent onto the discovery view
func ToDiscovery(a types.Agent) DiscoveryAgent {
	d := DiscoveryAgent{
		ID:            a.ID,
		Name:          a.Name,
		Description:   a.Description,
		Version:       a.Version,
		Type:          a.Type,
		Capabilities:  copyStrings(a.Capabilities),
		Status:        a.Status,
		Verified:      a.Verified(),
		OnChain:       a.Ledger.OnChain,
		Tags:          copyStrings(a.Metadata.Tags),
		Categories:    copyStrings(a.Metadata.Categories),
		SecurityLevel: a.Metadata.SecurityLevel,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Stats != nil {
		d.Rating = a.Stats.Rating
		d.Reviews = a.Stats.Reviews
		d.Executions = a.Stats.Executions
	}
	return d
}

// FromDiscovery rebuilds a canonical agent from the discovery view.
// A verified view implies an on-chain anchor with verified status.
func FromDiscovery(d DiscoveryAgent) types.Agent {
	a := defaults()
	a.ID = d.ID
	a.Name = d.Name
	a.Description = d.Description
	a.Version = or(d.Version, a.Version)
	a.Type = or(d.Type, a.Type)
	a.Capabilities = copyStrings(d.Capabilities)
	if d.Status != "" {
		a.Status = d.Status
	}
	if d.OnChain || d.Verified {
		a.Ledger = types.LedgerAnchor{OnChain: true, VerificationStatus: types.VerificationPending}
		if d.Verified {
			a.Ledger.VerificationStatus = types.VerificationVerified
		}
	}
	if d.Rating != 0 || d.Reviews != 0 || d.Executions != 0 {
		a.Stats = &types.AgentStats{Rating: d.Rating, Reviews: d.Reviews, Executions: d.Executions}
	}
	a.Metadata.Tags = copyStrings(d.Tags)
	a.Metadata.Categories = copyStrings(d.Categories)
	a.Metadata.SecurityLevel = or(d.SecurityLevel, a.Metadata.SecurityLevel)
	a.CreatedAt = d.CreatedAt
	a.UpdatedAt = d.UpdatedAt
	return a
}

// ToManaged projects an agent onto the management view
func ToManaged(a types.Agent) ManagedAgent {
	c := a.Clone()
	return ManagedAgent{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Version:      c.Version,
		Type:         c.Type,
		Capabilities: copyStrings(c.Capabilities),
		Status:       c.Status,
		Permissions:  copyStrings(c.Config.Permissions),
		UserBinding:  c.Config.UserBinding,
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// FromManaged rebuilds a canonical agent from the management view
func FromManaged(m ManagedAgent) types.Agent {
	a := defaults()
	a.ID = m.ID
	a.Name = m.Name
	a.Description = m.Description
	a.Version = or(m.Version, a.Version)
	a.Type = or(m.Type, a.Type)
	a.Capabilities = copyStrings(m.Capabilities)
	if m.Status != "" {
		a.Status = m.Status
	}
	a.Config.Permissions = copyStrings(m.Permissions)
	if m.UserBinding != (types.UserBinding{}) {
		a.Config.UserBinding = m.UserBinding
	}
	a.Metadata = types.Agent{Metadata: m.Metadata}.Clone().Metadata
	a.Metadata.SecurityLevel = or(a.Metadata.SecurityLevel, types.DefaultSecurityLevel)
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return a
}

// ManagedInputToAgentInput turns a management create request into a store input
func ManagedInputToAgentInput(in ManagedInput) types.AgentInput {
	out := types.AgentInput{
		Name:         in.Name,
		Description:  in.Description,
		Version:      in.Version,
		Type:         in.Type,
		Capabilities: in.Capabilities,
		Status:       in.Status,
	}
	if in.Permissions != nil || in.UserBinding != nil {
		cfg := defaults().Config
		cfg.Permissions = in.Permissions
		if in.UserBinding != nil {
			cfg.UserBinding = *in.UserBinding
		}
		out.Config = &cfg
	}
	if in.Tags != nil || in.Categories != nil || in.SecurityLevel != "" || in.Compliance != nil {
		out.Metadata = &types.AgentMetadata{
			Tags:          in.Tags,
			Categories:    in.Categories,
			SecurityLevel: in.SecurityLevel,
			Compliance:    in.Compliance,
		}
	}
	return out
}

// ManagedUpdateToPatch turns a management update into a store patch.
// Config and metadata are replaced wholesale by the store, so the fields
// the update leaves out are carried over from current.
func ManagedUpdateToPatch(u ManagedUpdate, current types.Agent) types.AgentPatch {
	p := types.AgentPatch{
		Name:         u.Name,
		Description:  u.Description,
		Version:      u.Version,
		Type:         u.Type,
		Capabilities: u.Capabilities,
		Status:       u.Status,
	}

	if u.Permissions != nil || u.UserBinding != nil {
		cfg := current.Clone().Config
		if u.Permissions != nil {
			cfg.Permissions = u.Permissions
		}
		if u.UserBinding != nil {
			cfg.UserBinding = *u.UserBinding
		}
		p.Config = &cfg
	}

	if u.Tags != nil || u.Categories != nil || u.SecurityLevel != nil || u.Compliance != nil {
		md := current.Clone().Metadata
		if u.Tags != nil {
			md.Tags = u.Tags
		}
		if u.Categories != nil {
			md.Categories = u.Categories
		}
		if u.SecurityLevel != nil {
			md.SecurityLevel = *u.SecurityLevel
		}
		if u.Compliance != nil {
			md.Compliance = u.Compliance
		}
		p.Metadata = &md
	}
	return p
}

// ToLedger projects an agent onto the ledger registration view
func ToLedger(a types.Agent) LedgerRecord {
	l := a.Ledger.Normalize()
	return LedgerRecord{
		AgentID:            a.ID,
		Name:               a.Name,
		Version:            a.Version,
		Capabilities:       copyStrings(a.Capabilities),
		OnChain:            l.OnChain,
		Verified:           a.Verified(),
		NetworkID:          l.NetworkID,
		BlockHeight:        l.BlockHeight,
		TxHash:             l.TxHash,
		VerificationStatus: l.VerificationStatus,
		SyncStatus:         l.SyncStatus,
		LastSyncAt:         l.LastSyncAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromLedger rebuilds a canonical agent from the ledger view
func FromLedger(r LedgerRecord) types.Agent {
	a := defaults()
	a.ID = r.AgentID
	a.Name = r.Name
	a.Version = or(r.Version, a.Version)
	a.Capabilities = copyStrings(r.Capabilities)
	a.Ledger = types.LedgerAnchor{
		OnChain:            r.OnChain,
		NetworkID:          r.NetworkID,
		BlockHeight:        r.BlockHeight,
		TxHash:             r.TxHash,
		VerificationStatus: r.VerificationStatus,
		LastSyncAt:         r.LastSyncAt,
		SyncStatus:         r.SyncStatus,
	}.Normalize()
	a.UpdatedAt = r.UpdatedAt
	return a
}

// ToContractView projects a contract onto its outward shape
func ToContractView(c types.Contract) ContractView {
	c = c.Clone()
	terms := c.Terms
	if terms == nil {
		terms = map[string]string{}
	}
	return ContractView{
		ID:          c.ID,
		AgentID:     c.AgentID,
		Name:        c.Name,
		Description: c.Description,
		Status:      c.Status,
		Terms:       terms,
		OnChain:     c.Ledger.OnChain,
		TxHash:      c.Ledger.TxHash,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Map applies fn to every element of in
func Map[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func defaults() types.Agent {
	return types.Agent{
		Version:      types.DefaultVersion,
		Type:         types.DefaultType,
		Status:       types.DefaultStatus,
		Capabilities: []string{},
		Config: types.AgentConfig{
			Permissions: []string{},
			UserBinding: types.UserBinding{
				Method:              types.BindingNone,
				Strength:            types.StrengthNone,
				VerificationCadence: types.DefaultVerificationCadence,
			},
		},
		Metadata: types.AgentMetadata{
			Tags:          []string{},
			Categories:    []string{},
			SecurityLevel: types.DefaultSecurityLevel,
			Compliance:    []string{},
		},
	}
}

// copyStrings copies in, turning nil into an empty slice
func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
