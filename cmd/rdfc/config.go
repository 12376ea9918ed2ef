package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/rdf-canon/rdf"
)

// Config holds rdfc settings. Flags override values loaded from a file.
type Config struct {
	Canonicalize CanonicalizeConfig `yaml:"canonicalize"`
	JSONLD       JSONLDConfig       `yaml:"jsonld"`
	LogLevel     string             `yaml:"log_level"`
}

// CanonicalizeConfig configures the canonicalization run.
type CanonicalizeConfig struct {
	// Algorithm is URDNA2015, RDFC-1.0 or URGNA2012.
	Algorithm string `yaml:"algorithm"`
	// MaxGroup caps related blank node groups (0 = unlimited).
	MaxGroup int `yaml:"max_group"`
	// Workers bounds parallel N-degree hashing.
	Workers int `yaml:"workers"`
	// Timeout aborts long runs (0 = none).
	Timeout time.Duration `yaml:"timeout"`
	// Digest is the CID multihash: sha2-256 or blake3.
	Digest string `yaml:"digest"`
}

// JSONLDConfig configures JSON-LD input.
type JSONLDConfig struct {
	Base           string `yaml:"base"`
	ProcessingMode string `yaml:"processing_mode"`
	RDFDirection   string `yaml:"rdf_direction"`
	Generalized    bool   `yaml:"generalized"`
	// CacheSize bounds the remote context cache (0 disables caching).
	CacheSize     int   `yaml:"cache_size"`
	MaxInputBytes int64 `yaml:"max_input_bytes"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Canonicalize: CanonicalizeConfig{
			Algorithm: string(rdf.AlgorithmURDNA2015),
			Workers:   1,
			Digest:    string(rdf.DigestSHA256),
		},
		JSONLD: JSONLDConfig{
			CacheSize: 64,
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := rdf.ParseAlgorithm(c.Canonicalize.Algorithm); err != nil {
		return fmt.Errorf("canonicalize.algorithm: %w", err)
	}
	if _, err := rdf.ParseDigestAlgorithm(c.Canonicalize.Digest); err != nil {
		return fmt.Errorf("canonicalize.digest: %w", err)
	}
	if c.Canonicalize.MaxGroup < 0 {
		return fmt.Errorf("canonicalize.max_group must not be negative")
	}
	if c.Canonicalize.Workers < 0 {
		return fmt.Errorf("canonicalize.workers must not be negative")
	}
	if c.Canonicalize.Timeout < 0 {
		return fmt.Errorf("canonicalize.timeout must not be negative")
	}
	switch c.JSONLD.RDFDirection {
	case "", rdf.RDFDirectionI18nDatatype:
	default:
		return fmt.Errorf("jsonld.rdf_direction: unsupported value %q", c.JSONLD.RDFDirection)
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) options() []rdf.Option {
	return []rdf.Option{
		rdf.OptAlgorithm(rdf.Algorithm(c.Canonicalize.Algorithm)),
		rdf.OptFormat(rdf.MediaTypeNQuads),
		rdf.OptMaxRelatedGroupSize(c.Canonicalize.MaxGroup),
		rdf.OptWorkers(c.Canonicalize.Workers),
	}
}

func (c *Config) jsonldOptions() rdf.JSONLDOptions {
	opts := rdf.JSONLDOptions{
		Base:                  c.JSONLD.Base,
		ProcessingMode:        c.JSONLD.ProcessingMode,
		RDFDirection:          c.JSONLD.RDFDirection,
		ProduceGeneralizedRDF: c.JSONLD.Generalized,
		MaxInputBytes:         c.JSONLD.MaxInputBytes,
	}
	if c.JSONLD.CacheSize > 0 {
		opts.DocumentLoader = rdf.NewCachingLoader(rdf.HTTPDocumentLoader(), c.JSONLD.CacheSize, nil)
	}
	return opts
}
