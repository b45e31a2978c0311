// Package registry owns the canonical agent records.
//
// The Store is the single source of truth: an id-keyed map of agents plus
// their contracts. Every successful mutation is snapshotted into one
// persistence slot and announced to subscribers as an Event.
//
// Lifecycle:
//
//	store := registry.Open(ctx, slot, registry.WithLogger(logger))
//	defer store.Close()
//
//	agent, err := store.Create(ctx, types.AgentInput{Name: "Data Bot"})
//	ok, err := store.Update(ctx, agent.ID, types.AgentPatch{Status: types.StatusPtr(types.StatusActive)})
//	ok = store.Delete(ctx, agent.ID)
//
// Event delivery is synchronous and ordered. A listener that mutates the
// store from inside its callback does not recurse: the resulting event is
// queued and delivered once the current event has reached every listener.
//
// Not-found is reported with booleans. Invalid input yields a
// *ValidationError. Persistence failures are logged and never returned.
package registry
