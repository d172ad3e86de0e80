package depbom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/descriptor"
	"github.com/albertocavalcante/go-depbom/sign"
)

// DefaultOutputDir is the build output directory used when none is set.
const DefaultOutputDir = "build"

// ReportsDir is the directory under the output directory that holds the document.
const ReportsDir = "reports"

// DefaultExcludedConfigurations are the declaration-only configurations that
// never contribute resolved artifacts of their own.
var DefaultExcludedConfigurations = []string{
	"apiElements",
	"implementation",
	"runtimeElements",
	"runtimeOnly",
	"testImplementation",
	"testRuntimeOnly",
}

// Option configures Generate.
type Option func(*config) error

type config struct {
	exclusions map[string]struct{}
	outputDir  string
	format     bom.Format
	workers    int
	source     descriptor.Source
	signer     *sign.Signer
	now        func() time.Time
	tool       bom.Tool

	// logger is nil in silent mode.
	logger *slog.Logger
}

// WithExcludedConfigurations replaces the default set of excluded configuration names.
// Calling it with no names excludes nothing.
func WithExcludedConfigurations(names ...string) Option {
	return func(c *config) error {
		c.exclusions = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.exclusions[n] = struct{}{}
		}
		return nil
	}
}

// WithAdditionalExclusions adds configuration names to the excluded set.
func WithAdditionalExclusions(names ...string) Option {
	return func(c *config) error {
		for _, n := range names {
			c.exclusions[n] = struct{}{}
		}
		return nil
	}
}

// WithOutputDir sets the build output directory. The document is written to
// {dir}/reports/bom.{xml|json}.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("output directory must not be empty")
		}
		c.outputDir = dir
		return nil
	}
}

// WithFormat sets the document encoding.
func WithFormat(f bom.Format) Option {
	return func(c *config) error {
		parsed, err := bom.ParseFormat(string(f))
		if err != nil {
			return err
		}
		c.format = parsed
		return nil
	}
}

// WithWorkers sets how many artifacts are hashed and augmented concurrently.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		c.workers = n
		return nil
	}
}

// WithDescriptorSource sets where component descriptors are fetched from.
// Without a source no component is augmented.
func WithDescriptorSource(src descriptor.Source) Option {
	return func(c *config) error {
		c.source = src
		return nil
	}
}

// WithSigner signs the validated document with a detached OpenPGP signature.
func WithSigner(s *sign.Signer) Option {
	return func(c *config) error {
		c.signer = s
		return nil
	}
}

// WithClock sets the time source for the document timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		c.now = now
		return nil
	}
}

// WithTool overrides the tool recorded in the document metadata.
func WithTool(t bom.Tool) Option {
	return func(c *config) error {
		c.tool = t
		return nil
	}
}

// WithLogger sets a structured logger for generation diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "depbom")
//	Generate(ctx, build, WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// outputPath returns the document path for the configured directory and format.
func (c *config) outputPath() string {
	return filepath.Join(c.outputDir, ReportsDir, "bom"+c.format.Ext())
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newConfig applies opts over the defaults.
func newConfig(opts ...Option) (*config, error) {
	c := &config{
		exclusions: make(map[string]struct{}, len(DefaultExcludedConfigurations)),
		outputDir:  DefaultOutputDir,
		format:     bom.DefaultFormat,
		workers:    1,
		now:        time.Now,
		tool:       bom.Tool{Vendor: ToolVendor, Name: ToolName, Version: Version},
	}
	for _, n := range DefaultExcludedConfigurations {
		c.exclusions[n] = struct{}{}
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
