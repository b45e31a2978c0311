package registry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// Stats aggregates the current contents of the store
func (s *Store) Stats() types.RegistryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := types.RegistryStats{
		Total:     len(s.agents),
		ByStatus:  make(map[types.AgentStatus]int),
		ByType:    make(map[string]int),
		Contracts: len(s.contracts),
	}

	ratings := make([]float64, 0, len(s.agents))
	for _, id := range s.order {
		a := s.agents[id]
		out.ByStatus[a.Status]++
		out.ByType[a.Type]++
		switch a.Status {
		case types.StatusActive:
			out.Active++
		case types.StatusInactive:
			out.Inactive++
		}
		if a.Verified() {
			out.Verified++
		}
		if a.Ledger.OnChain {
			out.OnChain++
		}
		if a.Stats != nil {
			ratings = append(ratings, a.Stats.Rating)
		}
	}

	out.Rated = len(ratings)
	if len(ratings) > 0 {
		out.AverageRating = stat.Mean(ratings, nil)
	}
	return out
}
