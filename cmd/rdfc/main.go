// Package main provides the rdfc binary, a command line front end for RDF
// dataset canonicalization.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-canon/rdf"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "rdfc"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code := rdf.Code(err); code != "" && code != rdf.ErrCodeInternal {
			fmt.Fprintf(os.Stderr, "Code: %s\n", code)
		}
		os.Exit(1)
	}
}

// flags are the command line overrides shared by every subcommand.
type flags struct {
	configPath string
	logLevel   string
	algorithm  string
	maxGroup   int
	workers    int
	input      string
	digest     string
}

type app struct {
	cfg    *Config
	logger *slog.Logger
	input  string
}

func rootCmd() *cobra.Command {
	var f flags
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "RDF dataset canonicalization",
		Long: `rdfc assigns deterministic blank node labels to RDF datasets using
URDNA2015 (RDFC-1.0) or URGNA2012 and prints canonical N-Quads.

Input is N-Quads by default; use --input jsonld for JSON-LD documents.
Reads from stdin when no file is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, f)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVarP(&f.algorithm, "algorithm", "a", string(rdf.AlgorithmURDNA2015), "Canonicalization algorithm (URDNA2015, RDFC-1.0, URGNA2012)")
	pf.IntVar(&f.maxGroup, "max-group", 0, "Fail when a related blank node group exceeds this size (0 = unlimited)")
	pf.IntVar(&f.workers, "workers", 1, "Parallel N-degree hash workers")
	pf.StringVarP(&f.input, "input", "i", "nquads", "Input format (nquads, jsonld)")
	pf.StringVar(&f.digest, "digest", string(rdf.DigestSHA256), "CID digest (sha2-256, blake3)")

	cmd.AddCommand(canonicalizeCmd(a), cidCmd(a), toRDFCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	return cmd
}

// setup loads the config file, applies explicitly set flags and configures logging.
func (a *app) setup(cmd *cobra.Command, f flags) error {
	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("algorithm") {
		cfg.Canonicalize.Algorithm = f.algorithm
	}
	if changed("max-group") {
		cfg.Canonicalize.MaxGroup = f.maxGroup
	}
	if changed("workers") {
		cfg.Canonicalize.Workers = f.workers
	}
	if changed("digest") {
		cfg.Canonicalize.Digest = f.digest
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch strings.ToLower(f.input) {
	case "nquads", "nq", "jsonld", "json-ld":
		a.input = strings.ToLower(f.input)
	default:
		return fmt.Errorf("unsupported input format %q", f.input)
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func canonicalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize [file]",
		Short: "Print the canonical N-Quads of a dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			quads, err := a.readQuads(ctx, cmd, args)
			if err != nil {
				return err
			}
			canonical, err := rdf.Canonicalize(ctx, quads, a.options()...)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), canonical)
			return err
		},
	}
}

func cidCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cid [file]",
		Short: "Print the content identifier of the canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			quads, err := a.readQuads(ctx, cmd, args)
			if err != nil {
				return err
			}
			digest, err := rdf.ParseDigestAlgorithm(a.cfg.Canonicalize.Digest)
			if err != nil {
				return err
			}
			id, err := rdf.CanonicalCID(ctx, quads, digest, a.options()...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		},
	}
}

func toRDFCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tordf [file.jsonld]",
		Short: "Convert a JSON-LD document to N-Quads",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			r, closeInput, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeInput()

			quads, err := rdf.ParseJSONLD(ctx, r, a.cfg.jsonldOptions())
			if err != nil {
				return err
			}
			a.logger.Debug("converted JSON-LD", "quads", len(quads))
			enc := rdf.NewNQuadsEncoder(cmd.OutOrStdout())
			for _, q := range quads {
				if err := enc.Write(q); err != nil {
					return err
				}
			}
			return enc.Close()
		},
	}
}

func (a *app) options() []rdf.Option {
	return append(a.cfg.options(), rdf.OptLogger(a.logger))
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Canonicalize.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Canonicalize.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) readQuads(ctx context.Context, cmd *cobra.Command, args []string) ([]rdf.Quad, error) {
	r, closeInput, err := openInput(cmd, args)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	var quads []rdf.Quad
	switch a.input {
	case "jsonld", "json-ld":
		quads, err = rdf.ParseJSONLD(ctx, r, a.cfg.jsonldOptions())
	default:
		quads, err = rdf.ParseNQuads(ctx, r, rdf.WithGeneralizedRDF())
	}
	if err != nil {
		return nil, err
	}
	a.logger.Debug("read input", "format", a.input, "quads", len(quads))
	return quads, nil
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
