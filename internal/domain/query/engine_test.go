package query

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingSource struct {
	agents    []types.Agent
	snapshots int
}

func (s *countingSource) Snapshot() []types.Agent {
	s.snapshots++
	out := make([]types.Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Clone()
	}
	return out
}

func (s *countingSource) Lookup(id string) (types.Agent, bool) {
	for _, a := range s.agents {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return types.Agent{}, false
}

func agent(id, name string, status types.AgentStatus, rating float64, caps ...string) types.Agent {
	a := types.Agent{
		ID:           id,
		Name:         name,
		Type:         "general",
		Status:       status,
		Capabilities: caps,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if rating > 0 {
		a.Stats = &types.AgentStats{Rating: rating}
	}
	return a
}

func fixture() *countingSource {
	return &countingSource{agents: []types.Agent{
		agent("a1", "Data Bot", types.StatusActive, 4.5, "analytics"),
		agent("a2", "Secure Bot", types.StatusInactive, 3.0, "security"),
		agent("a3", "alpha", types.StatusActive, 0, "analytics", "chat"),
		agent("a4", "Beta Data", types.StatusActive, 4.5, "chat"),
		agent("a5", "gamma", types.StatusDraft, 2.0),
	}}
}

func ids(agents []types.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

func newEngine(t *testing.T, src Source, opts ...Option) (*Engine, *manualClock) {
	t.Helper()
	clock := &manualClock{now: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	e, err := New(src, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, clock
}

func TestPipelineOrder(t *testing.T) {
	src := fixture()
	e, _ := newEngine(t, src)

	active := types.AgentFilter{Status: types.StatusActive}
	sp := SearchParams{Query: "data", Page: 1, PageSize: 10}
	so := SortParams{Field: SortName}

	res, err := e.Search(context.Background(), sp, so, active)
	require.NoError(t, err)

	expected := Sort(registry.SearchAgents(registry.FilterAgents(src.agents, active), "data"), so)
	want, _ := Paginate(expected, 1, 10, 0)
	assert.Equal(t, ids(want), ids(res.Items))
	assert.Equal(t, []string{"a4", "a1"}, ids(res.Items))
	assert.Equal(t, 2, res.Pagination.Total)
}

func TestSortIsStableAndCaseInsensitive(t *testing.T) {
	src := fixture()

	byName := Sort(src.agents, SortParams{Field: "NAME"})
	assert.Equal(t, []string{"a3", "a4", "a1", "a5", "a2"}, ids(byName))

	// a1 and a4 tie on rating and keep source order both ways
	asc := Sort(src.agents, SortParams{Field: SortRating, Direction: Asc})
	assert.Equal(t, []string{"a3", "a5", "a2", "a1", "a4"}, ids(asc))
	desc := Sort(src.agents, SortParams{Field: SortRating, Direction: Desc})
	assert.Equal(t, []string{"a1", "a4", "a2", "a5", "a3"}, ids(desc))

	byCaps := Sort(src.agents, SortParams{Field: SortCapabilities, Direction: Desc})
	assert.Equal(t, "a3", byCaps[0].ID)
	assert.Equal(t, "a5", byCaps[4].ID)

	unknown := Sort(src.agents, SortParams{Field: "shoe_size"})
	assert.Equal(t, ids(src.agents), ids(unknown))
	assert.Equal(t, "a1", src.agents[0].ID)
}

func TestPaginationBounds(t *testing.T) {
	src := fixture()

	tests := []struct {
		name             string
		page, size       int
		wantIDs          []string
		wantPage, wantPS int
		pages            int
		next, prev       bool
	}{
		{"first page", 1, 2, []string{"a1", "a2"}, 1, 2, 3, true, false},
		{"middle page", 2, 2, []string{"a3", "a4"}, 2, 2, 3, true, true},
		{"last partial page", 3, 2, []string{"a5"}, 3, 2, 3, false, true},
		{"beyond the end", 9, 2, []string{}, 9, 2, 3, false, true},
		{"clamps to one", 0, -4, []string{"a1"}, 1, 1, 5, true, false},
		{"clamps to max", 1, 500, []string{"a1", "a2", "a3"}, 1, 3, 2, true, false},
		{"max int page", math.MaxInt, 2, []string{}, math.MaxInt, 2, 3, false, true},
		{"huge page with clamped size", math.MaxInt / 50, 100, []string{}, math.MaxInt / 50, 3, 2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, p := Paginate(src.agents, tt.page, tt.size, 3)
			assert.Equal(t, tt.wantIDs, ids(items))
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPS, p.PageSize)
			assert.Equal(t, 5, p.Total)
			assert.Equal(t, tt.pages, p.TotalPages)
			assert.Equal(t, tt.next, p.HasNext)
			assert.Equal(t, tt.prev, p.HasPrev)
		})
	}

	_, empty := Paginate(nil, 1, 10, 0)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)

	// unbounded page size with an offset near the int limit
	items, p := Paginate(src.agents, math.MaxInt, math.MaxInt, 0)
	assert.Empty(t, items)
	assert.Equal(t, 1, p.TotalPages)
}

func TestSearchWithHugePage(t *testing.T) {
	e, _ := newEngine(t, fixture(), WithMaxPageSize(100))

	res, err := e.Search(context.Background(), SearchParams{Page: math.MaxInt / 50, PageSize: 100}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 5, res.Pagination.Total)
	assert.False(t, res.Pagination.HasNext)
}

func TestCacheHitWithinTTL(t *testing.T) {
	src := fixture()
	e, clock := newEngine(t, src, WithTTL(time.Minute))
	ctx := context.Background()
	sp := SearchParams{Page: 1, PageSize: 10}

	first, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, src.snapshots)

	clock.Advance(30 * time.Second)
	second, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, src.snapshots)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)

	clock.Advance(31 * time.Second)
	third, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, src.snapshots)

	stats := e.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(1), stats.Expired)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, time.Minute, stats.TTL)
}

func TestCacheIsStaleUntilTTLByDefault(t *testing.T) {
	ctx := context.Background()
	store := registry.Open(ctx, nil, registry.WithSeed(nil))
	defer store.Close()
	src := storeSource{store}

	e, clock := newEngine(t, src)
	_, err := store.Create(ctx, types.AgentInput{Name: "first"})
	require.NoError(t, err)

	res, err := e.Search(ctx, SearchParams{Page: 1, PageSize: 10}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Total)

	_, err = store.Create(ctx, types.AgentInput{Name: "second"})
	require.NoError(t, err)

	res, err = e.Search(ctx, SearchParams{Page: 1, PageSize: 10}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, res.Pagination.Total)

	clock.Advance(DefaultTTL)
	res, err = e.Search(ctx, SearchParams{Page: 1, PageSize: 10}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, res.Pagination.Total)
}

type storeSource struct{ s *registry.Store }

func (s storeSource) Snapshot() []types.Agent              { return s.s.List() }
func (s storeSource) Lookup(id string) (types.Agent, bool) { return s.s.Get(id) }

func TestInvalidateOnWrite(t *testing.T) {
	ctx := context.Background()
	store := registry.Open(ctx, nil, registry.WithSeed(nil))
	defer store.Close()

	e, _ := newEngine(t, storeSource{store}, WithInvalidateOnWrite(store))

	_, err := e.Search(ctx, SearchParams{Page: 1, PageSize: 10}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.CacheStats().Size)

	_, err = store.Create(ctx, types.AgentInput{Name: "fresh"})
	require.NoError(t, err)
	assert.Zero(t, e.CacheStats().Size)

	res, err := e.Search(ctx, SearchParams{Page: 1, PageSize: 10}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 1, res.Pagination.Total)
}

// clearingSource clears the engine's cache while a search holds its
// snapshot, the way a store write landing mid-search would
type clearingSource struct {
	*countingSource
	engine *Engine
}

func (s *clearingSource) Snapshot() []types.Agent {
	out := s.countingSource.Snapshot()
	if s.engine != nil {
		s.engine.ClearCache()
	}
	return out
}

func TestResultFromBeforeClearIsNotCached(t *testing.T) {
	ctx := context.Background()
	src := &clearingSource{countingSource: fixture()}
	e, _ := newEngine(t, src)
	src.engine = e
	sp := SearchParams{Page: 1, PageSize: 10}

	res, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Pagination.Total)
	assert.Zero(t, e.CacheStats().Size)

	src.engine = nil
	_, err = e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, e.CacheStats().Size)

	res, err = e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 2, src.snapshots)
}

func TestCachedResultsAreCopies(t *testing.T) {
	e, _ := newEngine(t, fixture())
	ctx := context.Background()
	sp := SearchParams{Page: 1, PageSize: 10}

	first, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	first.Items[0].Name = "mutated"

	second, err := e.Search(ctx, sp, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Data Bot", second.Items[0].Name)
}

func TestClearCacheAndEviction(t *testing.T) {
	src := fixture()
	e, _ := newEngine(t, src, WithCacheSize(2))
	ctx := context.Background()

	for page := 1; page <= 3; page++ {
		_, err := e.Search(ctx, SearchParams{Page: page, PageSize: 1}, SortParams{}, types.AgentFilter{})
		require.NoError(t, err)
	}
	stats := e.CacheStats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(1), stats.Evicted)

	e.ClearCache()
	assert.Zero(t, e.CacheStats().Size)

	res, err := e.Search(ctx, SearchParams{Page: 3, PageSize: 1}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestFingerprint(t *testing.T) {
	yes := true
	base := Fingerprint(
		SearchParams{Query: "Data", Page: 1, PageSize: 10},
		SortParams{Field: "name"},
		types.AgentFilter{Capabilities: []string{"chat", "analytics"}, Verified: &yes},
		100,
	)

	equivalent := []struct {
		name string
		sp   SearchParams
		so   SortParams
		f    types.AgentFilter
	}{
		{"capability order and duplicates", SearchParams{Query: "Data", Page: 1, PageSize: 10}, SortParams{Field: "name"},
			types.AgentFilter{Capabilities: []string{"analytics", "chat", "chat"}, Verified: &yes}},
		{"query case and padding", SearchParams{Query: "  dATA ", Page: 1, PageSize: 10}, SortParams{Field: "NAME", Direction: "ASC"},
			types.AgentFilter{Capabilities: []string{"Chat", "analytics"}, Verified: &yes}},
	}
	for _, tt := range equivalent {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, base, Fingerprint(tt.sp, tt.so, tt.f, 100))
		})
	}

	no := false
	different := []struct {
		name string
		sp   SearchParams
		so   SortParams
		f    types.AgentFilter
	}{
		{"page", SearchParams{Query: "Data", Page: 2, PageSize: 10}, SortParams{Field: "name"},
			types.AgentFilter{Capabilities: []string{"chat", "analytics"}, Verified: &yes}},
		{"direction", SearchParams{Query: "Data", Page: 1, PageSize: 10}, SortParams{Field: "name", Direction: Desc},
			types.AgentFilter{Capabilities: []string{"chat", "analytics"}, Verified: &yes}},
		{"verified flag", SearchParams{Query: "Data", Page: 1, PageSize: 10}, SortParams{Field: "name"},
			types.AgentFilter{Capabilities: []string{"chat", "analytics"}, Verified: &no}},
		{"verified unset", SearchParams{Query: "Data", Page: 1, PageSize: 10}, SortParams{Field: "name"},
			types.AgentFilter{Capabilities: []string{"chat", "analytics"}}},
	}
	for _, tt := range different {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, Fingerprint(tt.sp, tt.so, tt.f, 100))
		})
	}

	assert.Len(t, base, 64)
}

func TestGetDetails(t *testing.T) {
	e, _ := newEngine(t, fixture())

	a, ok := e.GetDetails("a2")
	require.True(t, ok)
	assert.Equal(t, "Secure Bot", a.Name)

	_, ok = e.GetDetails("missing")
	assert.False(t, ok)
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	e, _ := newEngine(t, fixture())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Search(ctx, SearchParams{}, SortParams{}, types.AgentFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapResult(t *testing.T) {
	e, _ := newEngine(t, fixture())
	res, err := e.Search(context.Background(), SearchParams{Page: 1, PageSize: 2}, SortParams{}, types.AgentFilter{})
	require.NoError(t, err)

	page := MapResult(res, func(a types.Agent) string { return fmt.Sprintf("%s:%s", a.ID, a.Name) })
	assert.Equal(t, []string{"a1:Data Bot", "a2:Secure Bot"}, page.Items)
	assert.Equal(t, res.Pagination, page.Pagination)
}
