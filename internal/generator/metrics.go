package generator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/strategist/internal/generator"

type metrics struct {
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *metrics {
	m := &metrics{}

	var err error
	m.duration, err = meter.Float64Histogram(
		"strategist.generation.duration_seconds",
		metric.WithDescription("Duration of strategy generation calls, labeled by model and result"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60),
	)
	if err != nil {
		logger.Warn("failed to create generation duration histogram", zap.Error(err))
	}

	m.failures, err = meter.Int64Counter(
		"strategist.generation.failures_total",
		metric.WithDescription("Failed strategy generation calls by model"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		logger.Warn("failed to create generation failures counter", zap.Error(err))
	}

	return m
}

func defaultMetrics(logger *zap.Logger) *metrics {
	return newMetrics(otel.Meter(instrumentationName), logger)
}

func (m *metrics) record(ctx context.Context, model string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	if m.duration != nil {
		m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("result", result),
		))
	}
	if err != nil && m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("model", model)))
	}
}
