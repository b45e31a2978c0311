// Package server wires the agent registry together.
//
// It opens the configured persistence slot, restores the store, attaches
// the discovery, management and ledger adapters, builds the query engine
// and mounts the HTTP API and event stream.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger, metrics and tracing
//  3. Open the slot and restore or seed the store
//  4. Build adapters, ledger gateway and query engine
//  5. Setup HTTP routes and middleware
//  6. Serve until the context is cancelled, then shut down gracefully
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
