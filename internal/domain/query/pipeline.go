package query

import (
	"cmp"
	"sort"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// Run executes filter, search, sort and paginate over agents in that order.
// It never mutates agents.
func Run(agents []types.Agent, sp SearchParams, so SortParams, f types.AgentFilter, maxPageSize int) ([]types.Agent, Pagination) {
	matched := registry.FilterAgents(agents, f)
	matched = registry.SearchAgents(matched, sp.Query)
	sorted := Sort(matched, so)
	return Paginate(sorted, sp.Page, sp.PageSize, maxPageSize)
}

type comparator func(a, b types.Agent) int

var comparators = map[string]comparator{
	SortName:    func(a, b types.Agent) int { return utils.CompareFold(a.Name, b.Name) },
	SortType:    func(a, b types.Agent) int { return utils.CompareFold(a.Type, b.Type) },
	SortStatus:  func(a, b types.Agent) int { return utils.CompareFold(string(a.Status), string(b.Status)) },
	SortVersion: func(a, b types.Agent) int { return utils.CompareFold(a.Version, b.Version) },
	SortCreatedAt: func(a, b types.Agent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	SortUpdatedAt: func(a, b types.Agent) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	},
	SortRating: func(a, b types.Agent) int {
		return cmp.Compare(rating(a), rating(b))
	},
	SortCapabilities: func(a, b types.Agent) int {
		return cmp.Compare(len(a.Capabilities), len(b.Capabilities))
	},
}

func rating(a types.Agent) float64 {
	if a.Stats == nil {
		return 0
	}
	return a.Stats.Rating
}

// Sort returns a stably sorted copy of agents. Ties keep input order in
// both directions.
func Sort(agents []types.Agent, so SortParams) []types.Agent {
	out := make([]types.Agent, len(agents))
	copy(out, agents)

	so = so.normalized()
	compare, ok := comparators[so.Field]
	if !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if so.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Paginate clamps page and pageSize to at least 1 (pageSize also to
// maxPageSize when positive) and returns the requested window
func Paginate(agents []types.Agent, page, pageSize, maxPageSize int) ([]types.Agent, Pagination) {
	page, pageSize = clampPage(page, pageSize, maxPageSize)

	total := len(agents)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	// pages past the end yield an empty window; checked by division so a
	// huge page cannot overflow the offset
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := start + min(pageSize, total-start)

	items := make([]types.Agent, end-start)
	copy(items, agents[start:end])

	return items, Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func clampPage(page, pageSize, maxPageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if maxPageSize > 0 && pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
