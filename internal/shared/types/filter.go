package types

// AgentFilter is a set of optional predicates combined with AND.
// Zero-valued fields are not applied.
type AgentFilter struct {
	Status       AgentStatus `json:"status,omitempty"`
	Type         string      `json:"type,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty"`
	Verified     *bool       `json:"verified,omitempty"`
	OnChain      *bool       `json:"on_chain,omitempty"`
}

// IsZero reports whether no predicate is set
func (f AgentFilter) IsZero() bool {
	return f.Status == "" && f.Type == "" && len(f.Capabilities) == 0 &&
		f.Verified == nil && f.OnChain == nil
}

// RegistryStats aggregates the store contents
type RegistryStats struct {
	Total         int                 `json:"total"`
	Active        int                 `json:"active"`
	Inactive      int                 `json:"inactive"`
	Verified      int                 `json:"verified"`
	OnChain       int                 `json:"on_chain"`
	AverageRating float64             `json:"average_rating"`
	Rated         int                 `json:"rated"`
	ByStatus      map[AgentStatus]int `json:"by_status"`
	ByType        map[string]int      `json:"by_type"`
	Contracts     int                 `json:"contracts"`
}
