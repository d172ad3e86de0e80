package depbom

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/buildgraph"
	"github.com/albertocavalcante/go-depbom/label"
)

// BuiltModules returns the coordinate strings of every module of b.
func BuiltModules(b buildgraph.Build) map[string]struct{} {
	built := make(map[string]struct{})
	for _, m := range b.Modules() {
		built[m.Coordinate().String()] = struct{}{}
	}
	return built
}

// Walker collects the third-party components of a build.
type Walker struct {
	exclusions map[string]struct{}
	builder    *Builder
	augmentor  *Augmentor
	workers    int
	logger     *slog.Logger
}

// NewWalker creates a Walker from the same options Generate accepts.
func NewWalker(opts ...Option) (*Walker, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newWalker(cfg), nil
}

func newWalker(cfg *config) *Walker {
	logger := cfg.log()
	return &Walker{
		exclusions: cfg.exclusions,
		builder:    NewBuilder(logger),
		augmentor:  NewAugmentor(cfg.source, logger),
		workers:    cfg.workers,
		logger:     logger,
	}
}

// Walk visits every module, configuration and artifact of b and returns the
// deduplicated components in visiting order.
//
// Excluded and unresolvable configurations are skipped. Artifacts built by b
// itself are skipped. A malformed artifact coordinate fails the walk.
func (w *Walker) Walk(ctx context.Context, b buildgraph.Build) (*ComponentSet, error) {
	plan, err := w.plan(ctx, b)
	if err != nil {
		return nil, err
	}

	components := make([]*Component, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for i, a := range plan {
		g.Go(func() error {
			c := w.builder.Build(a)
			w.augmentor.Augment(gctx, c, a.Coordinate)
			components[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := NewComponentSet()
	for _, c := range components {
		set.Add(c)
	}
	return set, nil
}

// plan returns the artifacts to turn into components, filtered and
// deduplicated, in visiting order.
func (w *Walker) plan(ctx context.Context, b buildgraph.Build) ([]buildgraph.Artifact, error) {
	built := BuiltModules(b)
	seen := make(map[Key]struct{})
	var plan []buildgraph.Artifact

	for _, m := range b.Modules() {
		for _, cfg := range m.Configurations() {
			name := cfg.Name()
			if _, ok := w.exclusions[name]; ok {
				w.logger.Debug("skipping excluded configuration",
					slog.String("module", m.Coordinate().String()),
					slog.String("configuration", name))
				continue
			}

			artifacts, err := cfg.Resolve(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				w.logger.Debug("skipping unresolvable configuration",
					slog.String("module", m.Coordinate().String()),
					slog.String("configuration", name),
					slog.Any("error", err))
				continue
			}

			for _, a := range artifacts {
				if err := a.Coordinate.Validate(); err != nil {
					return nil, fmt.Errorf("module %s configuration %s: %w", m.Coordinate(), name, err)
				}
				if _, ok := built[a.Coordinate.String()]; ok {
					continue
				}
				k := artifactKey(a)
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				plan = append(plan, a)
			}
		}
	}
	return plan, nil
}

// artifactKey is the Key of the component Build creates for a.
func artifactKey(a buildgraph.Artifact) Key {
	typ := a.Type
	if typ == "" {
		typ = label.DefaultArtifactType
	}
	return Key{Coordinate: a.Coordinate, Type: bom.TypeLibrary, ArtifactType: typ, Classifier: a.Classifier}
}
