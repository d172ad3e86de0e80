// Package depbom generates CycloneDX software bills of materials for
// multi-module JVM builds.
//
// Generate walks an already-resolved build graph, keeps the artifacts that are
// not produced by the build itself, hashes each one, enriches it with
// publisher, description and license data from its Maven descriptor, and
// writes a schema-validated document.
//
// # Quick Start
//
//	g, err := buildgraph.LoadManifest("depbom.yaml")
//	if err != nil {
//	    return err
//	}
//	src := descriptor.NewClient(descriptor.DefaultRepository)
//	res, err := depbom.Generate(ctx, g, depbom.WithDescriptorSource(src))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Path) // build/reports/bom.xml
//
// # Pipeline
//
// Generation runs these stages, logging each at info level:
//
//   - resolving dependencies: configurations are resolved and filtered,
//     self-built artifacts are dropped and duplicates collapsed
//   - creating BOM: the document is assembled from the component set
//   - writing BOM: the document is encoded and written
//   - validating BOM: the written file is re-read and checked against the
//     CycloneDX 1.4 profile embedded in package bom
//
// Any failure after the walk is returned as a *StageError. A document that
// fails validation yields an error matching ErrValidation.
//
// # Thread Safety
//
// Generate may be called concurrently for different output directories.
package depbom

import (
	"context"
	"log/slog"

	"github.com/opencontainers/go-digest"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/buildgraph"
)

// Tool identity recorded in document metadata.
const (
	ToolVendor = "albertocavalcante"
	ToolName   = "depbom"
	Version    = "0.1.0"
)

// Result describes a generated document.
type Result struct {
	// Components are the recorded components in document order.
	Components []*Component

	// Document is the assembled document.
	Document *bom.Document

	// Path is the location of the written document.
	Path   string
	Format bom.Format
	State  State

	// Digest is the sha256 digest of the written bytes.
	Digest digest.Digest

	// SignaturePath is empty unless a signer was configured.
	SignaturePath string
}

// Generate writes and validates the document for b.
func Generate(ctx context.Context, b buildgraph.Build, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	logger := cfg.log()

	logger.Info("resolving dependencies")
	set, err := newWalker(cfg).Walk(ctx, b)
	if err != nil {
		return nil, stageError(StageWalk, err)
	}

	path := cfg.outputPath()
	asm := NewAssembler(path, cfg.format)

	logger.Info("creating BOM", slog.Int("components", set.Len()))
	if err := asm.Assemble(set, newMetadata(cfg.now(), cfg.tool)); err != nil {
		return nil, stageError(StageAssemble, err)
	}

	logger.Info("writing BOM", slog.String("path", path))
	if err := asm.Serialize(); err != nil {
		return nil, err
	}

	logger.Info("validating BOM", slog.String("path", path))
	if err := asm.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Components: set.Components(),
		Document:   asm.Document(),
		Path:       path,
		Format:     cfg.format,
		State:      asm.State(),
		Digest:     asm.Digest(),
	}

	if cfg.signer != nil {
		logger.Info("signing BOM", slog.String("key", cfg.signer.KeyID()))
		sigPath, err := cfg.signer.SignFile(path)
		if err != nil {
			return nil, stageError(StageSign, err)
		}
		res.SignaturePath = sigPath
	}

	return res, nil
}
