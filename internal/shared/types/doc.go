// Package types provides the shared data structures of the agent registry.
//
// Core Types:
//   - Agent: canonical registry record
//   - Contract: sub-record bound to one agent at creation
//   - LedgerAnchor: optional on-chain registration of a record
//
// Write Types:
//   - AgentInput, ContractInput: create requests
//   - AgentPatch, ContractPatch: merge-patches (nil means absent)
//
// Query Types:
//   - AgentFilter: AND-combined predicates
//   - RegistryStats: aggregate counts
//
// Example Usage:
//
//	patch := types.AgentPatch{
//	    Status: types.StatusPtr(types.StatusActive),
//	}
//	updated := patch.Apply(agent)
package types
