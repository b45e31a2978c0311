package convert

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// DiscoveryAgent is the read-mostly view used for browsing and search
type DiscoveryAgent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Version       string            `json:"version"`
	Type          string            `json:"type"`
	Capabilities  []string          `json:"capabilities"`
	Status        types.AgentStatus `json:"status"`
	Verified      bool              `json:"verified"`
	OnChain       bool              `json:"on_chain"`
	Rating        float64           `json:"rating"`
	Reviews       int               `json:"reviews"`
	Executions    int64             `json:"executions"`
	Tags          []string          `json:"tags"`
	Categories    []string          `json:"categories"`
	SecurityLevel string            `json:"security_level"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ManagedAgent is the full editable view used by the management surface
type ManagedAgent struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Version      string              `json:"version"`
	Type         string              `json:"type"`
	Capabilities []string            `json:"capabilities"`
	Status       types.AgentStatus   `json:"status"`
	Permissions  []string            `json:"permissions"`
	UserBinding  types.UserBinding   `json:"user_binding"`
	Metadata     types.AgentMetadata `json:"metadata"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ManagedInput is a create request in management vocabulary
type ManagedInput struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Version       string             `json:"version,omitempty"`
	Type          string             `json:"type,omitempty"`
	Capabilities  []string           `json:"capabilities,omitempty"`
	Status        types.AgentStatus  `json:"status,omitempty"`
	Permissions   []string           `json:"permissions,omitempty"`
	UserBinding   *types.UserBinding `json:"user_binding,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Categories    []string           `json:"categories,omitempty"`
	SecurityLevel string             `json:"security_level,omitempty"`
	Compliance    []string           `json:"compliance,omitempty"`
}

// ManagedUpdate is a partial update in management vocabulary.
// Nil fields are left untouched.
type ManagedUpdate struct {
	Name          *string            `json:"name,omitempty"`
	Description   *string            `json:"description,omitempty"`
	Version       *string            `json:"version,omitempty"`
	Type          *string            `json:"type,omitempty"`
	Capabilities  []string           `json:"capabilities,omitempty"`
	Status        *types.AgentStatus `json:"status,omitempty"`
	Permissions   []string           `json:"permissions,omitempty"`
	UserBinding   *types.UserBinding `json:"user_binding,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Categories    []string           `json:"categories,omitempty"`
	SecurityLevel *string            `json:"security_level,omitempty"`
	Compliance    []string           `json:"compliance,omitempty"`
}

// LedgerRecord is the registration view of an agent
type LedgerRecord struct {
	AgentID            string     `json:"agent_id"`
	Name               string     `json:"name"`
	Version            string     `json:"version"`
	Capabilities       []string   `json:"capabilities"`
	OnChain            bool       `json:"on_chain"`
	Verified           bool       `json:"verified"`
	NetworkID          string     `json:"network_id,omitempty"`
	BlockHeight        uint64     `json:"block_height,omitempty"`
	TxHash             string     `json:"tx_hash,omitempty"`
	VerificationStatus string     `json:"verification_status,omitempty"`
	SyncStatus         string     `json:"sync_status,omitempty"`
	LastSyncAt         *time.Time `json:"last_sync_at,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ContractView is the outward shape of a contract
type ContractView struct {
	ID          string               `json:"id"`
	AgentID     string               `json:"agent_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      types.ContractStatus `json:"status"`
	Terms       map[string]string    `json:"terms"`
	OnChain     bool                 `json:"on_chain"`
	TxHash      string               `json:"tx_hash,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
