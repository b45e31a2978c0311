/*
Package tracing provides lightweight request tracing.

Each HTTP request gets a span that continues the caller's trace when the
X-Trace-ID and X-Span-ID headers are present. Outgoing calls, such as those
to a remote ledger gateway, carry the same headers through
InjectTraceContext. Finished spans are buffered and logged through zap.

# Usage

	tracer := tracing.New("agent-registry", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "ledger.anchor")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
