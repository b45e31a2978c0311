// Package ledger provides the pluggable gateway the ledger adapter anchors
// agents and contracts through.
//
// Two implementations exist: Simulated, a deterministic in-process chain
// used by default and in tests, and HTTPGateway, which talks to an external
// anchoring service over JSON.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind is the type of subject being anchored
type Kind string

const (
	KindAgent    Kind = "agent"
	KindContract Kind = "contract"
)

// AnchorRequest asks the ledger to record a content hash for a subject
type AnchorRequest struct {
	Kind        Kind   `json:"kind"`
	SubjectID   string `json:"subject_id"`
	ContentHash string `json:"content_hash"`
	NetworkID   string `json:"network_id,omitempty"`
}

// Receipt is the ledger's view of one anchoring transaction
type Receipt struct {
	NetworkID   string    `json:"network_id"`
	TxHash      string    `json:"tx_hash"`
	BlockHeight uint64    `json:"block_height"`
	Status      string    `json:"status"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Gateway anchors content on a ledger and reports transaction status
type Gateway interface {
	Anchor(ctx context.Context, req AnchorRequest) (Receipt, error)
	Status(ctx context.Context, txHash string) (Receipt, error)
}

var (
	ErrUnknownTx      = errors.New("unknown transaction")
	ErrInvalidRequest = errors.New("invalid anchor request")
)

// GatewayError reports a failed gateway operation
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ledger %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func validate(req AnchorRequest) error {
	if req.SubjectID == "" {
		return fmt.Errorf("%w: subject id is required", ErrInvalidRequest)
	}
	if req.ContentHash == "" {
		return fmt.Errorf("%w: content hash is required", ErrInvalidRequest)
	}
	if req.Kind != KindAgent && req.Kind != KindContract {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
	return nil
}
