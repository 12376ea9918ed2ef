package rdf

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// canonMetrics holds the instruments recorded when Options.Meter is set.
type canonMetrics struct {
	runs       metric.Int64Counter
	duration   metric.Float64Histogram
	blankNodes metric.Int64Histogram
}

func newCanonMetrics(meter metric.Meter) (*canonMetrics, error) {
	if meter == nil {
		return nil, nil
	}
	m := &canonMetrics{}
	var err error

	m.runs, err = meter.Int64Counter(
		"rdf.canonicalize.count",
		metric.WithDescription("Number of canonicalization runs"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create run counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"rdf.canonicalize.duration",
		metric.WithDescription("Canonicalization duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	m.blankNodes, err = meter.Int64Histogram(
		"rdf.canonicalize.blank_nodes",
		metric.WithDescription("Blank nodes relabeled per run"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create blank node histogram: %w", err)
	}
	return m, nil
}

// record is safe to call on a nil receiver.
func (m *canonMetrics) record(ctx context.Context, algorithm Algorithm, start time.Time, out *Canonicalization, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(Code(err))
	}
	opts := metric.WithAttributes(
		attribute.String("rdf.algorithm", string(algorithm)),
		attribute.String("rdf.outcome", outcome),
	)
	m.runs.Add(ctx, 1, opts)
	m.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, opts)
	if out != nil {
		m.blankNodes.Record(ctx, int64(len(out.Issued)), opts)
	}
}
