package rdf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestCanonicalize_WithMeter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	out, err := Canonicalize(context.Background(), mustQuads(t, twoStarsInput), OptMeter(meter))
	require.NoError(t, err)
	assert.Equal(t, twoStarsCanonical, out)

	_, err = Canonicalize(context.Background(), mustQuads(t, twoStarsInput), OptMeter(meter), OptMaxRelatedGroupSize(1))
	assert.ErrorIs(t, err, ErrPermutationLimit)
}

func TestCanonMetrics_NilMeter(t *testing.T) {
	m, err := newCanonMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NotPanics(t, func() {
		m.record(context.Background(), AlgorithmURDNA2015, time.Now(), nil, nil)
	})
}

func TestCanonMetrics_Instruments(t *testing.T) {
	m, err := newCanonMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NotNil(t, m.runs)
	assert.NotNil(t, m.duration)
	assert.NotNil(t, m.blankNodes)
	assert.NotPanics(t, func() {
		m.record(context.Background(), AlgorithmURGNA2012, time.Now(), &Canonicalization{Issued: map[string]string{"a": "c14n0"}}, nil)
		m.record(context.Background(), AlgorithmURGNA2012, time.Now(), nil, ErrPermutationLimit)
	})
}
