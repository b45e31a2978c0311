// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a *zap.Logger, usually obtained through Component, and
// fall back to zap.NewNop when none is configured.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	store := registry.Open(ctx, slot, registry.WithLogger(logger.Component("store")))
//	logger.Error("Failed to persist snapshot", zap.Error(err))
package logging
