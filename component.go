package depbom

import (
	"context"
	"log/slog"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/buildgraph"
	"github.com/albertocavalcante/go-depbom/descriptor"
	"github.com/albertocavalcante/go-depbom/hashing"
	"github.com/albertocavalcante/go-depbom/label"
)

// Builder turns resolved artifacts into components.
type Builder struct {
	logger *slog.Logger
	hash   func(path string) ([]hashing.Hash, error)
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Builder{logger: logger, hash: hashing.File}
}

// Build creates the component for a. It never fails: when the artifact file
// cannot be hashed the error is logged and the component has no hashes.
func (b *Builder) Build(a buildgraph.Artifact) *Component {
	typ := a.Type
	if typ == "" {
		typ = label.DefaultArtifactType
	}
	c := &Component{
		Coordinate:   a.Coordinate,
		Type:         bom.TypeLibrary,
		ArtifactType: typ,
		Classifier:   a.Classifier,
		PURL:         a.Coordinate.PackageURL(typ, a.Classifier),
	}

	b.logger.Debug("calculating hashes",
		slog.String("group", c.Coordinate.Group),
		slog.String("name", c.Coordinate.Name),
		slog.String("type", c.ArtifactType),
		slog.String("classifier", c.Classifier))

	hashes, err := b.hash(a.File)
	if err != nil {
		b.logger.Error("failed to hash component",
			slog.String("component", c.Coordinate.String()),
			slog.String("file", a.File),
			slog.Any("error", err))
		c.Hashes = []hashing.Hash{}
		return c
	}
	c.Hashes = hashes
	return c
}

// Augmentor merges descriptor metadata into components.
type Augmentor struct {
	source descriptor.Source
	logger *slog.Logger
}

// NewAugmentor creates an Augmentor. A nil source leaves every component as is.
func NewAugmentor(src descriptor.Source, logger *slog.Logger) *Augmentor {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Augmentor{source: src, logger: logger}
}

// Augment looks up the descriptor of coord and copies its publisher,
// description and licenses into c. A missing descriptor is logged and leaves c
// unchanged.
func (a *Augmentor) Augment(ctx context.Context, c *Component, coord label.Coordinate) {
	if a.source == nil {
		return
	}
	res := descriptor.Lookup(ctx, a.source, coord)
	if !res.Found() {
		a.logger.Error("unable to read descriptor",
			slog.String("component", coord.String()),
			slog.Any("error", res.Reason))
		return
	}
	merge(c, res.Descriptor)
}

// merge applies descriptor metadata to c.
func merge(c *Component, d *descriptor.Descriptor) {
	if d.Organization != nil {
		c.Publisher = d.Organization.Name
	}
	c.Description = d.Description

	var licenses []string
	for _, l := range d.Licenses {
		switch {
		case l.Name != "":
			licenses = append(licenses, l.Name)
		case l.URL != "":
			licenses = append(licenses, l.URL)
		}
	}
	if len(licenses) > 0 {
		c.Licenses = licenses
	}
}
