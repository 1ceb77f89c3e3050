// Package telemetry wires OpenTelemetry tracing and metrics for strategist.
//
// Telemetry is off unless settings.yaml enables it. When enabled, spans and
// metrics go to an OTLP collector over gRPC or HTTP/protobuf. Failing to
// build an exporter never stops the application: the instance is marked
// degraded and the global no-op providers stay in place.
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(s.Telemetry, version), logger)
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Packages create their instruments through otel.Tracer and otel.Meter, so
// New must run before they are constructed. Tests use NewTestTelemetry, which
// records spans and metrics in memory.
package telemetry
