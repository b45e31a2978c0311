/*
Package adapter exposes the registry store to its three consumers.

# Adapters

  - Discovery: read-mostly browsing, rating, and the query engine's source
  - Management: create, edit, status changes and removal
  - Ledger: on-chain registration and contract deployment via a ledger.Gateway

Each mutating call performs exactly one store mutation and returns the
converted result. A missing agent becomes a *NotFoundError; store
validation errors are returned as is, so errors.As with
*registry.ValidationError keeps working.

# Events

Every adapter subscribes to the store once and re-publishes each store
event in its own vocabulary:

	mgmt := adapter.NewManagement(store)
	sub := mgmt.Subscribe(func(ctx context.Context, ev adapter.ManagementEvent) {
		logger.Info("Agent changed", zap.String("id", ev.RecordID), zap.Strings("fields", ev.Fields))
	})
	defer mgmt.Unsubscribe(sub)

Listeners run on the goroutine that committed the change. A listener that
writes back through an adapter must pass the ctx it was handed.

Adapters keep no state beyond the store reference and their subscriber
list.
*/
package adapter
