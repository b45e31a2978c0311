package query

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

var fingerprintHasher = utils.DefaultHasher().WithDomain("query")

type fingerprintFilter struct {
	Status       string   `json:"status"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
	Verified     *bool    `json:"verified"`
	OnChain      *bool    `json:"on_chain"`
}

type fingerprintInput struct {
	Filter    fingerprintFilter `json:"filter"`
	Query     string            `json:"query"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	SortField string            `json:"sort_field"`
	SortDir   string            `json:"sort_dir"`
}

// Fingerprint derives the cache key for a query. Inputs that always yield
// the same result map to the same key: text compared case-insensitively is
// folded, capability order and duplicates are ignored, and the page window
// is clamped first.
func Fingerprint(sp SearchParams, so SortParams, f types.AgentFilter, maxPageSize int) string {
	page, pageSize := clampPage(sp.Page, sp.PageSize, maxPageSize)
	so = so.normalized()
	if _, known := comparators[so.Field]; !known {
		so = SortParams{Direction: Asc}
	}

	caps := make([]string, 0, len(f.Capabilities))
	for _, c := range f.Capabilities {
		caps = append(caps, utils.Fold(c))
	}
	caps = types.DedupeStrings(caps)
	sort.Strings(caps)

	in := fingerprintInput{
		Filter: fingerprintFilter{
			Status:       string(f.Status),
			Type:         utils.Fold(f.Type),
			Capabilities: caps,
			Verified:     f.Verified,
			OnChain:      f.OnChain,
		},
		Query:     utils.Fold(strings.TrimSpace(sp.Query)),
		Page:      page,
		PageSize:  pageSize,
		SortField: so.Field,
		SortDir:   string(so.Direction),
	}

	key, err := fingerprintHasher.HashCanonical(in)
	if err != nil {
		// a struct of strings, ints and bools always marshals
		panic(err)
	}
	return key
}
