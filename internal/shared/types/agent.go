package types

import "time"

// AgentStatus represents the lifecycle status of an agent
type AgentStatus string

const (
	StatusActive     AgentStatus = "active"
	StatusInactive   AgentStatus = "inactive"
	StatusStopped    AgentStatus = "stopped"
	StatusError      AgentStatus = "error"
	StatusDraft      AgentStatus = "draft"
	StatusDeprecated AgentStatus = "deprecated"
)

// AllStatuses lists every valid status in declaration order
var AllStatuses = []AgentStatus{
	StatusActive,
	StatusInactive,
	StatusStopped,
	StatusError,
	StatusDraft,
	StatusDeprecated,
}

// Valid reports whether s is one of the declared statuses
func (s AgentStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// BindingMethod is how an agent is bound to its user
type BindingMethod string

const (
	BindingNone      BindingMethod = "none"
	BindingBiometric BindingMethod = "biometric"
	BindingHardware  BindingMethod = "hardware_key"
	BindingPassword  BindingMethod = "password"
	BindingSSO       BindingMethod = "sso"
)

// BindingStrength grades a user binding
type BindingStrength string

const (
	StrengthNone   BindingStrength = "none"
	StrengthWeak   BindingStrength = "weak"
	StrengthMedium BindingStrength = "medium"
	StrengthStrong BindingStrength = "strong"
)

// Ledger verification and sync states
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"

	SyncSynced  = "synced"
	SyncPending = "pending"
	SyncFailed  = "failed"
)

// Defaults applied when a field is omitted on create
const (
	DefaultVersion             = "1.0.0"
	DefaultType                = "general"
	DefaultStatus              = StatusDraft
	DefaultSecurityLevel       = "standard"
	DefaultVerificationCadence = "never"
)

// Agent is the canonical registry record
type Agent struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Version      string        `json:"version"`
	Type         string        `json:"type"`
	Capabilities []string      `json:"capabilities"`
	Status       AgentStatus   `json:"status"`
	Config       AgentConfig   `json:"config"`
	Ledger       LedgerAnchor  `json:"ledger"`
	Stats        *AgentStats   `json:"stats,omitempty"`
	Metadata     AgentMetadata `json:"metadata"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// AgentConfig holds permissions and the user binding
type AgentConfig struct {
	Permissions []string    `json:"permissions"`
	UserBinding UserBinding `json:"user_binding"`
}

// UserBinding describes how an agent is tied to a subject
type UserBinding struct {
	SubjectID           string          `json:"subject_id,omitempty"`
	Method              BindingMethod   `json:"method"`
	Strength            BindingStrength `json:"strength"`
	VerificationCadence string          `json:"verification_cadence"`
	FallbackAllowed     bool            `json:"fallback_allowed"`
}

// LedgerAnchor is the optional on-chain registration of a record.
// Chain fields are only meaningful when OnChain is true.
type LedgerAnchor struct {
	OnChain            bool       `json:"on_chain"`
	NetworkID          string     `json:"network_id,omitempty"`
	BlockHeight        uint64     `json:"block_height,omitempty"`
	TxHash             string     `json:"tx_hash,omitempty"`
	VerificationStatus string     `json:"verification_status,omitempty"`
	LastSyncAt         *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus         string     `json:"sync_status,omitempty"`
}

// Normalize clears chain fields of an anchor that is not on chain
func (l LedgerAnchor) Normalize() LedgerAnchor {
	if !l.OnChain {
		return LedgerAnchor{}
	}
	if l.LastSyncAt != nil {
		t := *l.LastSyncAt
		l.LastSyncAt = &t
	}
	return l
}

// AgentStats are consumer-derived usage figures
type AgentStats struct {
	Rating      float64    `json:"rating"`
	Reviews     int        `json:"reviews"`
	Executions  int64      `json:"executions"`
	SuccessRate float64    `json:"success_rate"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// AgentMetadata holds descriptive lists
type AgentMetadata struct {
	Tags          []string `json:"tags"`
	Categories    []string `json:"categories"`
	SecurityLevel string   `json:"security_level"`
	Compliance    []string `json:"compliance"`
}

// Verified reports whether the agent carries a verified ledger anchor
func (a *Agent) Verified() bool {
	return a.Ledger.OnChain && a.Ledger.VerificationStatus == VerificationVerified
}

// Clone returns a deep copy of the agent
func (a Agent) Clone() Agent {
	out := a
	out.Capabilities = cloneStrings(a.Capabilities)
	out.Config.Permissions = cloneStrings(a.Config.Permissions)
	out.Ledger = a.Ledger.Normalize()
	if a.Stats != nil {
		stats := *a.Stats
		if stats.LastUsedAt != nil {
			t := *stats.LastUsedAt
			stats.LastUsedAt = &t
		}
		out.Stats = &stats
	}
	out.Metadata.Tags = cloneStrings(a.Metadata.Tags)
	out.Metadata.Categories = cloneStrings(a.Metadata.Categories)
	out.Metadata.Compliance = cloneStrings(a.Metadata.Compliance)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// DedupeStrings drops blanks and repeated values, keeping first occurrences
func DedupeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
