// Package cli implements agentctl, the maintenance command line for the
// agent registry. Every command except serve opens the configured store,
// performs one operation and closes it again.
package cli
