package observability

import (
	"context"

	"github.com/honeynil/raffle-service/internal/infrastructure/observability"
)

// Setup wires logs, metrics and traces for one binary.
func Setup(serviceName, metricsAddr, otlpEndpoint string) func(context.Context) error {
	observability.InitLogger()
	observability.InitMetrics(metricsAddr)
	return observability.InitTracing(serviceName, otlpEndpoint)
}
