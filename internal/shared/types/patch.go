package types

// AgentInput carries the caller-provided fields of a new agent.
// Only Name is required; everything else falls back to defaults.
type AgentInput struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Version      string         `json:"version,omitempty"`
	Type         string         `json:"type,omitempty"`
	Capabilities []string       `json:"capabilities,omitempty"`
	Status       AgentStatus    `json:"status,omitempty"`
	Config       *AgentConfig   `json:"config,omitempty"`
	Ledger       *LedgerAnchor  `json:"ledger,omitempty"`
	Stats        *AgentStats    `json:"stats,omitempty"`
	Metadata     *AgentMetadata `json:"metadata,omitempty"`
}

// AgentPatch is a merge-patch over Agent. A nil field is left untouched;
// a non-nil field replaces the stored value wholesale. Slices follow the
// same rule: nil means absent, an empty slice clears.
type AgentPatch struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Version      *string        `json:"version,omitempty"`
	Type         *string        `json:"type,omitempty"`
	Capabilities []string       `json:"capabilities,omitempty"`
	Status       *AgentStatus   `json:"status,omitempty"`
	Config       *AgentConfig   `json:"config,omitempty"`
	Ledger       *LedgerAnchor  `json:"ledger,omitempty"`
	Stats        *AgentStats    `json:"stats,omitempty"`
	Metadata     *AgentMetadata `json:"metadata,omitempty"`
}

// Fields lists the names of the fields the patch sets, in declaration order
func (p AgentPatch) Fields() []string {
	fields := make([]string, 0, 10)
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Version != nil {
		fields = append(fields, "version")
	}
	if p.Type != nil {
		fields = append(fields, "type")
	}
	if p.Capabilities != nil {
		fields = append(fields, "capabilities")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Config != nil {
		fields = append(fields, "config")
	}
	if p.Ledger != nil {
		fields = append(fields, "ledger")
	}
	if p.Stats != nil {
		fields = append(fields, "stats")
	}
	if p.Metadata != nil {
		fields = append(fields, "metadata")
	}
	return fields
}

// Empty reports whether the patch sets no field
func (p AgentPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Apply merges the patch into a copy of a and returns it.
// Identity and timestamps are never touched.
func (p AgentPatch) Apply(a Agent) Agent {
	out := a.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Version != nil {
		out.Version = *p.Version
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Capabilities != nil {
		out.Capabilities = cloneStrings(p.Capabilities)
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Config != nil {
		out.Config = *p.Config
		out.Config.Permissions = cloneStrings(p.Config.Permissions)
	}
	if p.Ledger != nil {
		out.Ledger = p.Ledger.Normalize()
	}
	if p.Stats != nil {
		out.Stats = Agent{Stats: p.Stats}.Clone().Stats
	}
	if p.Metadata != nil {
		out.Metadata = Agent{Metadata: *p.Metadata}.Clone().Metadata
	}
	return out
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// StatusPtr returns a pointer to s
func StatusPtr(s AgentStatus) *AgentStatus {
	return &s
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}
