/*
Package monitoring provides Prometheus metrics for the agent registry.

# Overview

Collectors cover the HTTP surface, store mutations and event dispatch,
snapshot persistence, the query cache and the ledger gateway. They are
registered on an injected prometheus.Registerer so several instances can
coexist in one process (tests create one per case).

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(monitoring.Handler(metrics)))

	timer := monitoring.NewTimer(metrics, "anchor")
	// ... call the gateway ...
	timer.Stop("success")

A nil *Metrics is valid and records nothing.
*/
package monitoring
