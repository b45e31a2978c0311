package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// DefaultNetworkID is used when neither the request nor the gateway names one
const DefaultNetworkID = "agentos-sim"

// Simulated is a deterministic in-memory ledger. Anchoring returns a
// pending receipt; the first status query confirms it.
type Simulated struct {
	network string
	hasher  *utils.Hasher
	now     func() time.Time

	mu       sync.Mutex
	height   uint64
	receipts map[string]Receipt
}

// SimulatedOption configures a Simulated gateway
type SimulatedOption func(*Simulated)

// WithNetwork sets the default network id
func WithNetwork(id string) SimulatedOption {
	return func(s *Simulated) {
		if id != "" {
			s.network = id
		}
	}
}

// WithStartHeight sets the height of the first block
func WithStartHeight(h uint64) SimulatedOption {
	return func(s *Simulated) { s.height = h }
}

// WithSimulatedClock overrides the confirmation clock
func WithSimulatedClock(now func() time.Time) SimulatedOption {
	return func(s *Simulated) { s.now = now }
}

// NewSimulated creates a simulated ledger
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		network:  DefaultNetworkID,
		hasher:   utils.NewHasher(utils.BLAKE2b).WithDomain("ledger-tx"),
		now:      time.Now,
		height:   1,
		receipts: make(map[string]Receipt),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Anchor records req in the next block
func (s *Simulated) Anchor(ctx context.Context, req AnchorRequest) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, &GatewayError{Op: "anchor", Err: err}
	}
	if err := validate(req); err != nil {
		return Receipt{}, &GatewayError{Op: "anchor", StatusCode: 400, Err: err}
	}

	network := req.NetworkID
	if network == "" {
		network = s.network
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	height := s.height
	s.height++

	r := Receipt{
		NetworkID:   network,
		TxHash:      "0x" + s.hasher.HashString(fmt.Sprintf("%s|%s|%s|%s|%d", network, req.Kind, req.SubjectID, req.ContentHash, height)),
		BlockHeight: height,
		Status:      types.VerificationPending,
	}
	s.receipts[r.TxHash] = r
	return r, nil
}

// Status confirms and returns the receipt for txHash
func (s *Simulated) Status(ctx context.Context, txHash string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, &GatewayError{Op: "status", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.receipts[txHash]
	if !ok {
		return Receipt{}, &GatewayError{Op: "status", StatusCode: 404, Err: ErrUnknownTx}
	}
	if r.Status != types.VerificationVerified {
		r.Status = types.VerificationVerified
		r.ConfirmedAt = s.now().UTC()
		s.receipts[txHash] = r
	}
	return r, nil
}

// Height returns the height the next anchor will land in
func (s *Simulated) Height() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}
