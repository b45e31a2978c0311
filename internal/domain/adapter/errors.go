package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError
	ErrNotFound = errors.New("not found")

	// ErrNotRegistered is returned for ledger operations on an agent that
	// has no on-chain anchor
	ErrNotRegistered = errors.New("agent is not registered on chain")

	// ErrAnchorChanged is returned when an agent's anchor was replaced or
	// dropped while a sync was in flight
	ErrAnchorChanged = errors.New("ledger anchor changed during sync")
)

// NotFoundError reports a missing agent or contract
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func agentNotFound(id string) error {
	return &NotFoundError{Kind: "agent", ID: id}
}
