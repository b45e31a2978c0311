package convert

import (
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// DiscoveryPatch is an agent patch restricted to the fields the discovery
// view shows. Nil fields were not touched.
type DiscoveryPatch struct {
	Name          *string            `json:"name,omitempty"`
	Description   *string            `json:"description,omitempty"`
	Version       *string            `json:"version,omitempty"`
	Type          *string            `json:"type,omitempty"`
	Capabilities  []string           `json:"capabilities,omitempty"`
	Status        *types.AgentStatus `json:"status,omitempty"`
	Verified      *bool              `json:"verified,omitempty"`
	OnChain       *bool              `json:"on_chain,omitempty"`
	Rating        *float64           `json:"rating,omitempty"`
	Reviews       *int               `json:"reviews,omitempty"`
	Executions    *int64             `json:"executions,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Categories    []string           `json:"categories,omitempty"`
	SecurityLevel *string            `json:"security_level,omitempty"`
}

// LedgerPatch is an agent patch restricted to the registration view
type LedgerPatch struct {
	Name         *string             `json:"name,omitempty"`
	Version      *string             `json:"version,omitempty"`
	Capabilities []string            `json:"capabilities,omitempty"`
	Anchor       *types.LedgerAnchor `json:"anchor,omitempty"`
}

// PatchToDiscovery projects p onto the discovery view. ok is false when p
// touches nothing the view shows.
func PatchToDiscovery(p types.AgentPatch) (DiscoveryPatch, bool) {
	d := DiscoveryPatch{
		Name:         copyPtr(p.Name),
		Description:  copyPtr(p.Description),
		Version:      copyPtr(p.Version),
		Type:         copyPtr(p.Type),
		Capabilities: copyStrings(p.Capabilities),
		Status:       copyPtr(p.Status),
	}
	ok := p.Name != nil || p.Description != nil || p.Version != nil || p.Type != nil ||
		p.Capabilities != nil || p.Status != nil
	if p.Ledger != nil {
		a := types.Agent{Ledger: p.Ledger.Normalize()}
		verified, onChain := a.Verified(), a.Ledger.OnChain
		d.Verified, d.OnChain = &verified, &onChain
		ok = true
	}
	if p.Stats != nil {
		stats := *p.Stats
		d.Rating, d.Reviews, d.Executions = &stats.Rating, &stats.Reviews, &stats.Executions
		ok = true
	}
	if p.Metadata != nil {
		d.Tags = copyStrings(p.Metadata.Tags)
		d.Categories = copyStrings(p.Metadata.Categories)
		d.SecurityLevel = copyPtr(&p.Metadata.SecurityLevel)
		ok = true
	}
	return d, ok
}

// PatchToManagedUpdate is the inverse of ManagedUpdateToPatch for the
// fields management edits. ok is false when p touches none of them.
func PatchToManagedUpdate(p types.AgentPatch) (ManagedUpdate, bool) {
	u := ManagedUpdate{
		Name:         copyPtr(p.Name),
		Description:  copyPtr(p.Description),
		Version:      copyPtr(p.Version),
		Type:         copyPtr(p.Type),
		Capabilities: copyStrings(p.Capabilities),
		Status:       copyPtr(p.Status),
	}
	ok := p.Name != nil || p.Description != nil || p.Version != nil || p.Type != nil ||
		p.Capabilities != nil || p.Status != nil
	if p.Config != nil {
		u.Permissions = copyStrings(p.Config.Permissions)
		if u.Permissions == nil {
			u.Permissions = []string{}
		}
		u.UserBinding = copyPtr(&p.Config.UserBinding)
		ok = true
	}
	if p.Metadata != nil {
		md := types.Agent{Metadata: *p.Metadata}.Clone().Metadata
		u.Tags, u.Categories, u.Compliance = md.Tags, md.Categories, md.Compliance
		u.SecurityLevel = &md.SecurityLevel
		ok = true
	}
	return u, ok
}

// PatchToLedger projects p onto the registration view
func PatchToLedger(p types.AgentPatch) (LedgerPatch, bool) {
	l := LedgerPatch{
		Name:         copyPtr(p.Name),
		Version:      copyPtr(p.Version),
		Capabilities: copyStrings(p.Capabilities),
	}
	if p.Ledger != nil {
		anchor := p.Ledger.Normalize()
		l.Anchor = &anchor
	}
	ok := l.Name != nil || l.Version != nil || l.Capabilities != nil || l.Anchor != nil
	return l, ok
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
