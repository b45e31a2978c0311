package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/providers/ledger"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Anchor(ctx context.Context, req ledger.AnchorRequest) (ledger.Receipt, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ledger.Receipt), args.Error(1)
}

func (m *mockGateway) Status(ctx context.Context, txHash string) (ledger.Receipt, error) {
	args := m.Called(ctx, txHash)
	return args.Get(0).(ledger.Receipt), args.Error(1)
}

var syncTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *registry.Store {
	t.Helper()
	s := registry.Open(context.Background(), nil, registry.WithSeed(nil))
	t.Cleanup(s.Close)
	return s
}

func TestManagementCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewManagement(newStore(t))
	defer m.Close()

	created, err := m.Create(ctx, convert.ManagedInput{
		Name:         "Builder",
		Capabilities: []string{"build"},
		Permissions:  []string{"repo:read"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, created.Status)
	assert.Equal(t, []string{"repo:read"}, created.Permissions)

	level := "high"
	updated, err := m.Update(ctx, created.ID, convert.ManagedUpdate{
		Name:          types.StringPtr("Builder v2"),
		SecurityLevel: &level,
	})
	require.NoError(t, err)
	assert.Equal(t, "Builder v2", updated.Name)
	assert.Equal(t, "high", updated.Metadata.SecurityLevel)
	assert.Equal(t, []string{"repo:read"}, updated.Permissions)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	active, err := m.SetStatus(ctx, created.ID, types.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, active.Status)

	assert.Len(t, m.Search("builder"), 1)
	assert.Len(t, m.Filter(types.AgentFilter{Status: types.StatusActive}), 1)
	assert.Len(t, m.List(), 1)

	require.NoError(t, m.Delete(ctx, created.ID))

	_, err = m.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, m.Delete(ctx, created.ID), &nf)
	assert.Equal(t, created.ID, nf.ID)
}

func TestManagementPassesValidationErrors(t *testing.T) {
	ctx := context.Background()
	m := NewManagement(newStore(t))
	defer m.Close()

	_, err := m.Create(ctx, convert.ManagedInput{Name: ""})
	var verr *registry.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	created, err := m.Create(ctx, convert.ManagedInput{Name: "ok"})
	require.NoError(t, err)
	_, err = m.SetStatus(ctx, created.ID, "bogus")
	assert.ErrorIs(t, err, registry.ErrValidation)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = m.SetStatus(ctx, "agent_missing", types.StatusActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagementEvents(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := NewManagement(store)
	defer m.Close()

	var got []ManagementEvent
	sub := m.Subscribe(func(_ context.Context, ev ManagementEvent) { got = append(got, ev) })

	created, err := m.Create(ctx, convert.ManagedInput{Name: "Eventful", Status: types.StatusActive})
	require.NoError(t, err)
	_, err = m.SetStatus(ctx, created.ID, types.StatusInactive)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, registry.EventRecordAdded, got[0].Type)
	assert.Equal(t, registry.EventRecordUpdated, got[1].Type)
	assert.Equal(t, []string{"status"}, got[1].Fields)
	require.NotNil(t, got[1].Agent)
	assert.Equal(t, types.StatusInactive, got[1].Agent.Status)
	assert.Nil(t, got[0].Patch)
	require.NotNil(t, got[1].Patch)
	require.NotNil(t, got[1].Patch.Status)
	assert.Equal(t, types.StatusInactive, *got[1].Patch.Status)
	assert.Nil(t, got[1].Patch.Name)

	assert.True(t, m.Unsubscribe(sub))
	require.NoError(t, m.Delete(ctx, created.ID))
	assert.Len(t, got, 2)
}

func TestEventDeliveredBeforeQueryReturns(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := NewDiscovery(store)
	defer d.Close()
	m := NewManagement(store)
	defer m.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "A", Status: types.StatusActive})
	require.NoError(t, err)

	var seen []DiscoveryEvent
	d.Subscribe(func(_ context.Context, ev DiscoveryEvent) { seen = append(seen, ev) })

	_, err = m.SetStatus(ctx, a.ID, types.StatusInactive)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, registry.EventRecordUpdated, seen[0].Type)
	got, err := d.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInactive, got.Status)
}

func TestAdapterListenerPanicIsIsolated(t *testing.T) {
	store := newStore(t)
	d := NewDiscovery(store)
	defer d.Close()

	var calls int
	d.Subscribe(func(context.Context, DiscoveryEvent) { panic("bad listener") })
	d.Subscribe(func(context.Context, DiscoveryEvent) { calls++ })

	_, err := store.Create(context.Background(), types.AgentInput{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDiscoveryRate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := NewDiscovery(store)
	defer d.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Rated"})
	require.NoError(t, err)

	_, err = d.Rate(ctx, a.ID, 4)
	require.NoError(t, err)
	rated, err := d.Rate(ctx, a.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, rated.Reviews)
	assert.InDelta(t, 3.0, rated.Rating, 1e-9)

	_, err = d.Rate(ctx, a.ID, 6)
	assert.ErrorIs(t, err, registry.ErrValidation)
	_, err = d.Rate(ctx, "agent_missing", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscoveryRateConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := NewDiscovery(store)
	defer d.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Popular"})
	require.NoError(t, err)

	var patches []float64
	d.Subscribe(func(_ context.Context, ev DiscoveryEvent) {
		if ev.Patch != nil && ev.Patch.Rating != nil {
			patches = append(patches, *ev.Patch.Rating)
		}
	})

	const raters = 300
	var wg sync.WaitGroup
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.Rate(ctx, a.ID, float64(1+i%5))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := d.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, raters, got.Reviews)
	assert.InDelta(t, 3.0, got.Rating, 1e-9)
	assert.Len(t, patches, raters)
}

func TestListenerWritesThroughAdapter(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := NewManagement(store)
	defer m.Close()

	var kinds []registry.EventType
	m.Subscribe(func(lctx context.Context, ev ManagementEvent) {
		kinds = append(kinds, ev.Type)
		if ev.Type == registry.EventRecordAdded {
			_, err := m.SetStatus(lctx, ev.RecordID, types.StatusActive)
			assert.NoError(t, err)
		}
	})

	created, err := m.Create(ctx, convert.ManagedInput{Name: "Self-activating"})
	require.NoError(t, err)

	assert.Equal(t, []registry.EventType{registry.EventRecordAdded, registry.EventRecordUpdated}, kinds)
	got, err := m.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, got.Status)
}

func TestDiscoveryReads(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	d := NewDiscovery(store)
	defer d.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Data Bot", Status: types.StatusActive, Capabilities: []string{"analytics"}})
	require.NoError(t, err)
	_, err = store.Create(ctx, types.AgentInput{Name: "Secure Bot", Status: types.StatusInactive})
	require.NoError(t, err)

	assert.Len(t, d.List(), 2)
	found := d.Search("data")
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
	assert.Len(t, d.Filter(types.AgentFilter{Status: types.StatusInactive}), 1)

	assert.Len(t, d.Snapshot(), 2)
	_, ok := d.Lookup(a.ID)
	assert.True(t, ok)
}

func TestLedgerRegisterAndSync(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	gw := new(mockGateway)
	l := NewLedger(store, gw, WithClock(func() time.Time { return syncTime }))
	defer l.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Anchored", Capabilities: []string{"x"}})
	require.NoError(t, err)
	hash, err := l.ContentHash(a)
	require.NoError(t, err)

	gw.On("Anchor", mock.Anything, ledger.AnchorRequest{Kind: ledger.KindAgent, SubjectID: a.ID, ContentHash: hash}).
		Return(ledger.Receipt{NetworkID: "testnet", TxHash: "0xabc", BlockHeight: 10, Status: types.VerificationPending}, nil).Once()
	gw.On("Status", mock.Anything, "0xabc").
		Return(ledger.Receipt{NetworkID: "testnet", TxHash: "0xabc", BlockHeight: 10, Status: types.VerificationVerified}, nil).Once()

	var events []LedgerEvent
	l.Subscribe(func(_ context.Context, ev LedgerEvent) { events = append(events, ev) })

	rec, err := l.Register(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, rec.OnChain)
	assert.False(t, rec.Verified)
	assert.Equal(t, "0xabc", rec.TxHash)
	require.NotNil(t, rec.LastSyncAt)
	assert.Equal(t, syncTime, *rec.LastSyncAt)

	rec, err = l.Sync(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
	assert.Equal(t, types.SyncSynced, rec.SyncStatus)

	assert.Len(t, l.ListRegistered(), 1)
	require.Len(t, events, 2)
	assert.Equal(t, []string{"ledger"}, events[0].Fields)
	require.NotNil(t, events[1].Patch)
	require.NotNil(t, events[1].Patch.Anchor)
	assert.Equal(t, types.VerificationVerified, events[1].Patch.Anchor.VerificationStatus)
	assert.Equal(t, uint64(10), events[1].Patch.Anchor.BlockHeight)

	rec, err = l.Unregister(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, rec.OnChain)
	assert.Empty(t, rec.TxHash)
	assert.Empty(t, l.ListRegistered())

	gw.AssertExpectations(t)
}

func TestLedgerGatewayFailure(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	gw := new(mockGateway)
	l := NewLedger(store, gw)
	defer l.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Unlucky"})
	require.NoError(t, err)

	gwErr := &ledger.GatewayError{Op: "anchor", StatusCode: 503, Err: errors.New("unavailable")}
	gw.On("Anchor", mock.Anything, mock.Anything).Return(ledger.Receipt{}, gwErr)

	var events int
	l.Subscribe(func(context.Context, LedgerEvent) { events++ })

	_, err = l.Register(ctx, a.ID)
	var got *ledger.GatewayError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 503, got.StatusCode)

	stored, _ := store.Get(a.ID)
	assert.False(t, stored.Ledger.OnChain)
	assert.Zero(t, events)
}

func TestLedgerSyncKeepsNewerAnchor(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	gw := new(mockGateway)
	l := NewLedger(store, gw, WithClock(func() time.Time { return syncTime }))
	defer l.Close()

	a, err := store.Create(ctx, types.AgentInput{
		Name:   "Re-anchored",
		Ledger: &types.LedgerAnchor{OnChain: true, NetworkID: "testnet", TxHash: "0xold", SyncStatus: types.SyncPending},
	})
	require.NoError(t, err)

	newer := types.LedgerAnchor{OnChain: true, NetworkID: "testnet", TxHash: "0xnew", SyncStatus: types.SyncSynced}
	gw.On("Status", mock.Anything, "0xold").
		Run(func(mock.Arguments) {
			// a re-registration lands while the status call is in flight
			_, err := store.Update(ctx, a.ID, types.AgentPatch{Ledger: &newer})
			require.NoError(t, err)
		}).
		Return(ledger.Receipt{TxHash: "0xold", BlockHeight: 3, Status: types.VerificationVerified}, nil).Once()

	_, err = l.Sync(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAnchorChanged)

	stored, _ := store.Get(a.ID)
	assert.Equal(t, "0xnew", stored.Ledger.TxHash)
	assert.Equal(t, types.SyncSynced, stored.Ledger.SyncStatus)
	assert.Zero(t, stored.Ledger.BlockHeight)
	gw.AssertExpectations(t)
}

func TestLedgerSyncFailureMarksAnchor(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	gw := new(mockGateway)
	l := NewLedger(store, gw, WithClock(func() time.Time { return syncTime }))
	defer l.Close()

	a, err := store.Create(ctx, types.AgentInput{
		Name:   "Flaky",
		Ledger: &types.LedgerAnchor{OnChain: true, TxHash: "0xflaky", SyncStatus: types.SyncSynced},
	})
	require.NoError(t, err)

	gw.On("Status", mock.Anything, "0xflaky").Return(ledger.Receipt{}, ledger.ErrUnknownTx).Once()

	_, err = l.Sync(ctx, a.ID)
	assert.ErrorIs(t, err, ledger.ErrUnknownTx)

	stored, _ := store.Get(a.ID)
	assert.Equal(t, types.SyncFailed, stored.Ledger.SyncStatus)
	require.NotNil(t, stored.Ledger.LastSyncAt)
	assert.Equal(t, syncTime, *stored.Ledger.LastSyncAt)
	gw.AssertExpectations(t)
}

func TestLedgerNotRegistered(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, ledger.NewSimulated())
	defer l.Close()

	a, err := store.Create(ctx, types.AgentInput{Name: "Offchain"})
	require.NoError(t, err)

	_, err = l.Sync(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = l.Unregister(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)
	_, err = l.Register(ctx, "agent_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerDeployContract(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	l := NewLedger(store, ledger.NewSimulated(ledger.WithNetwork("sim")))
	defer l.Close()

	offchain, err := store.Create(ctx, types.AgentInput{Name: "Plain"})
	require.NoError(t, err)
	c, err := l.DeployContract(ctx, offchain.ID, types.ContractInput{Name: "terms"})
	require.NoError(t, err)
	assert.False(t, c.OnChain)
	assert.Equal(t, offchain.ID, c.AgentID)

	anchored, err := store.Create(ctx, types.AgentInput{Name: "Anchored"})
	require.NoError(t, err)
	_, err = l.Register(ctx, anchored.ID)
	require.NoError(t, err)

	c, err = l.DeployContract(ctx, anchored.ID, types.ContractInput{Name: "sla", Terms: map[string]string{"uptime": "99.9"}})
	require.NoError(t, err)
	assert.True(t, c.OnChain)
	assert.NotEmpty(t, c.TxHash)
	assert.Len(t, l.Contracts(anchored.ID), 1)

	_, err = l.DeployContract(ctx, "agent_missing", types.ContractInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.DeployContract(ctx, anchored.ID, types.ContractInput{Name: ""})
	assert.ErrorIs(t, err, registry.ErrValidation)
}
