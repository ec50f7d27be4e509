package repository

import (
	"context"
	"time"

	"github.com/honeynil/raffle-service/internal/infrastructure/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// call is one traced and metered repository method invocation.
type call struct {
	method string
	span   trace.Span
	start  time.Time
}

func startCall(ctx context.Context, tracerName, method string) (context.Context, *call) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method)
	return ctx, &call{method: method, span: span, start: time.Now()}
}

func (c *call) end(err error) {
	status := "success"
	if err != nil {
		status = "error"
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	}
	observability.RepositoryCalls.WithLabelValues(c.method, status).Inc()
	observability.RepositoryDuration.WithLabelValues(c.method).Observe(time.Since(c.start).Seconds())
	c.span.End()
}
