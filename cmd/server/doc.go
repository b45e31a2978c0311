// Package main is the entry point for the agent registry HTTP server.
//
// The server exposes discovery search, management CRUD, ledger anchoring
// and a websocket event stream over one record store. The store snapshots
// into the configured persistence driver and falls back to the built-in
// seed set on first start.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# File-backed store under ./data
//	./server -port 8000
//
//	# Ephemeral store with extra fixtures, colored debug logs
//	./server -store memory -seed-dir ./fixtures -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
