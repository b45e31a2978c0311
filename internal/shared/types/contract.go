package types

import "time"

// ContractStatus represents the lifecycle of a contract
type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractSuspended  ContractStatus = "suspended"
	ContractTerminated ContractStatus = "terminated"
)

// Valid reports whether s is a declared contract status
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractActive, ContractSuspended, ContractTerminated:
		return true
	}
	return false
}

// Contract is a sub-record bound to one agent at creation time
type Contract struct {
	ID          string            `json:"id"`
	AgentID     string            `json:"agent_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Status      ContractStatus    `json:"status"`
	Terms       map[string]string `json:"terms"`
	Ledger      LedgerAnchor      `json:"ledger"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Clone returns a deep copy of the contract
func (c Contract) Clone() Contract {
	out := c
	out.Ledger = c.Ledger.Normalize()
	if c.Terms != nil {
		out.Terms = make(map[string]string, len(c.Terms))
		for k, v := range c.Terms {
			out.Terms[k] = v
		}
	}
	return out
}

// ContractInput carries the fields of a new contract
type ContractInput struct {
	AgentID     string            `json:"agent_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      ContractStatus    `json:"status,omitempty"`
	Terms       map[string]string `json:"terms,omitempty"`
	Ledger      *LedgerAnchor     `json:"ledger,omitempty"`
}

// ContractPatch is a merge-patch over Contract. AgentID is fixed at creation.
type ContractPatch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *ContractStatus   `json:"status,omitempty"`
	Terms       map[string]string `json:"terms,omitempty"`
	Ledger      *LedgerAnchor     `json:"ledger,omitempty"`
}

// Clone returns a deep copy of the patch
func (p ContractPatch) Clone() ContractPatch {
	out := ContractPatch{Terms: Contract{Terms: p.Terms}.Clone().Terms}
	if p.Name != nil {
		v := *p.Name
		out.Name = &v
	}
	if p.Description != nil {
		v := *p.Description
		out.Description = &v
	}
	if p.Status != nil {
		v := *p.Status
		out.Status = &v
	}
	if p.Ledger != nil {
		v := p.Ledger.Normalize()
		out.Ledger = &v
	}
	return out
}

// Apply merges the patch into a copy of c
func (p ContractPatch) Apply(c Contract) Contract {
	out := c.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Terms != nil {
		out.Terms = Contract{Terms: p.Terms}.Clone().Terms
	}
	if p.Ledger != nil {
		out.Ledger = p.Ledger.Normalize()
	}
	return out
}
