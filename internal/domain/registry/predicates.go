package registry

import (
	"strings"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// MatchQuery reports whether query occurs, ignoring case, in the agent's
// name, description, any capability or any metadata tag. A blank query
// matches everything.
func MatchQuery(a types.Agent, query string) bool {
	q := utils.Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return matchFolded(a, q)
}

func matchFolded(a types.Agent, q string) bool {
	if strings.Contains(utils.Fold(a.Name), q) || strings.Contains(utils.Fold(a.Description), q) {
		return true
	}
	for _, c := range a.Capabilities {
		if strings.Contains(utils.Fold(c), q) {
			return true
		}
	}
	for _, tag := range a.Metadata.Tags {
		if strings.Contains(utils.Fold(tag), q) {
			return true
		}
	}
	return false
}

// MatchFilter reports whether the agent satisfies every predicate set in f
func MatchFilter(a types.Agent, f types.AgentFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Type != "" && !utils.EqualFold(a.Type, f.Type) {
		return false
	}
	if len(f.Capabilities) > 0 && !hasAnyCapability(a, f.Capabilities) {
		return false
	}
	if f.Verified != nil && a.Verified() != *f.Verified {
		return false
	}
	if f.OnChain != nil && a.Ledger.OnChain != *f.OnChain {
		return false
	}
	return true
}

func hasAnyCapability(a types.Agent, wanted []string) bool {
	for _, w := range wanted {
		for _, c := range a.Capabilities {
			if utils.EqualFold(c, w) {
				return true
			}
		}
	}
	return false
}

// FilterAgents applies MatchFilter to agents, keeping order
func FilterAgents(agents []types.Agent, f types.AgentFilter) []types.Agent {
	if f.IsZero() {
		return agents
	}
	out := make([]types.Agent, 0, len(agents))
	for _, a := range agents {
		if MatchFilter(a, f) {
			out = append(out, a)
		}
	}
	return out
}

// SearchAgents applies MatchQuery to agents, keeping order
func SearchAgents(agents []types.Agent, query string) []types.Agent {
	q := utils.Fold(strings.TrimSpace(query))
	if q == "" {
		return agents
	}
	out := make([]types.Agent, 0, len(agents))
	for _, a := range agents {
		if matchFolded(a, q) {
			out = append(out, a)
		}
	}
	return out
}
