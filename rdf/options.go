package rdf

import (
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Algorithm names a canonicalization algorithm.
type Algorithm string

const (
	// AlgorithmURDNA2015 is the SHA-256 based algorithm (RDF Dataset Canonicalization).
	AlgorithmURDNA2015 Algorithm = "URDNA2015"
	// AlgorithmRDFC10 is the W3C name of URDNA2015.
	AlgorithmRDFC10 Algorithm = "RDFC-1.0"
	// AlgorithmURGNA2012 is the legacy SHA-1 based algorithm.
	AlgorithmURGNA2012 Algorithm = "URGNA2012"
)

// N-Quads media types accepted as output formats.
const (
	MediaTypeNQuads       = "application/n-quads"
	MediaTypeNQuadsLegacy = "application/nquads"
)

// Options configures canonicalization.
type Options struct {
	// Algorithm selects URDNA2015 (default) or URGNA2012.
	Algorithm Algorithm
	// Format selects the output: an N-Quads media type yields text only,
	// empty yields the canonical Dataset as well.
	Format string
	// MaxRelatedGroupSize caps the number of blank nodes whose orderings are
	// enumerated at once. Zero means unlimited.
	MaxRelatedGroupSize int
	// Workers bounds concurrent N-degree hashing within one ambiguous group.
	// Values below 2 run sequentially.
	Workers int
	// Logger receives debug records; defaults to slog.Default().
	Logger *slog.Logger
	// Tracer overrides the tracer from the global otel provider.
	Tracer trace.Tracer
	// Meter, when set, receives run count, duration and blank node metrics.
	Meter metric.Meter
}

// Option configures canonicalization using functional options.
type Option func(*Options)

// OptAlgorithm selects the canonicalization algorithm.
func OptAlgorithm(algorithm Algorithm) Option {
	return func(opts *Options) {
		opts.Algorithm = algorithm
	}
}

// OptFormat selects the output format.
func OptFormat(format string) Option {
	return func(opts *Options) {
		opts.Format = format
	}
}

// OptMaxRelatedGroupSize caps permutation enumeration; see Options.
func OptMaxRelatedGroupSize(size int) Option {
	return func(opts *Options) {
		opts.MaxRelatedGroupSize = size
	}
}

// OptWorkers sets the number of concurrent N-degree hash computations.
func OptWorkers(workers int) Option {
	return func(opts *Options) {
		opts.Workers = workers
	}
}

// OptLogger sets the logger.
func OptLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// OptTracer sets the tracer.
func OptTracer(tracer trace.Tracer) Option {
	return func(opts *Options) {
		opts.Tracer = tracer
	}
}

// OptMeter sets the meter used for canonicalization metrics.
func OptMeter(meter metric.Meter) Option {
	return func(opts *Options) {
		opts.Meter = meter
	}
}

func defaultOptions() Options {
	return Options{Algorithm: AlgorithmURDNA2015}
}

func buildOptions(opts []Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return options
}

// ParseAlgorithm normalizes an algorithm name. Empty selects URDNA2015.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(AlgorithmURDNA2015), string(AlgorithmRDFC10):
		return AlgorithmURDNA2015, nil
	case string(AlgorithmURGNA2012):
		return AlgorithmURGNA2012, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, value)
	}
}

// ParseFormat validates an output format. Empty is allowed and means "dataset".
func ParseFormat(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case MediaTypeNQuads, MediaTypeNQuadsLegacy:
		return MediaTypeNQuads, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}
