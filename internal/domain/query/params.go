package query

import (
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// Sort fields
const (
	SortName         = "name"
	SortType         = "type"
	SortStatus       = "status"
	SortVersion      = "version"
	SortCreatedAt    = "created_at"
	SortUpdatedAt    = "updated_at"
	SortRating       = "rating"
	SortCapabilities = "capabilities"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SearchParams carries the free-text term and the page window
type SearchParams struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SortParams selects the ordering. An empty or unknown field keeps the
// source order.
type SortParams struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

func (p SortParams) normalized() SortParams {
	out := SortParams{Field: strings.ToLower(strings.TrimSpace(p.Field)), Direction: Asc}
	if strings.EqualFold(string(p.Direction), string(Desc)) {
		out.Direction = Desc
	}
	return out
}

// Pagination describes where a page sits in the full result
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Result is one page of a query
type Result struct {
	Items       []types.Agent `json:"items"`
	Pagination  Pagination    `json:"pagination"`
	Cached      bool          `json:"cached"`
	GeneratedAt time.Time     `json:"generated_at"`
}

func (r Result) clone() Result {
	out := r
	out.Items = make([]types.Agent, len(r.Items))
	for i, a := range r.Items {
		out.Items[i] = a.Clone()
	}
	return out
}

// MapResult converts a result's items while keeping its page metadata
func MapResult[T any](r Result, fn func(types.Agent) T) Page[T] {
	items := make([]T, len(r.Items))
	for i, a := range r.Items {
		items[i] = fn(a)
	}
	return Page[T]{Items: items, Pagination: r.Pagination, Cached: r.Cached, GeneratedAt: r.GeneratedAt}
}

// Page is a Result whose items have been converted to another shape
type Page[T any] struct {
	Items       []T        `json:"items"`
	Pagination  Pagination `json:"pagination"`
	Cached      bool       `json:"cached"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// CacheStats reports cache occupancy and effectiveness
type CacheStats struct {
	Size    int           `json:"size"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	Expired uint64        `json:"expired"`
	Evicted uint64        `json:"evicted"`
	TTL     time.Duration `json:"ttl"`
}
