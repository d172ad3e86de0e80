package bazel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/albertocavalcante/go-depbom/buildgraph"
	"github.com/albertocavalcante/go-depbom/label"
)

// ModuleFileName is the name of the module file in every Bazel module directory.
const ModuleFileName = "MODULE.bazel"

// DefaultVersion is the version given to modules whose module() call has none.
const DefaultVersion = "0.0.0"

// ErrNoModuleName is returned when a built module declares no name.
var ErrNoModuleName = errors.New("module has no name")

type loadConfig struct {
	group      string
	repository buildgraph.Repository
}

// Option configures Load.
type Option func(*loadConfig)

// WithGroup sets the Maven group assigned to the workspace's own modules.
func WithGroup(group string) Option {
	return func(c *loadConfig) {
		c.group = group
	}
}

// WithRepository sets the local Maven repository that holds resolved artifact files.
func WithRepository(repo buildgraph.Repository) Option {
	return func(c *loadConfig) {
		if repo.Root != "" {
			c.repository = repo
		}
	}
}

// Load reads the workspace rooted at dir (or the MODULE.bazel file at dir) and
// returns its dependency graph.
func Load(dir string, opts ...Option) (*buildgraph.Graph, error) {
	cfg := &loadConfig{repository: buildgraph.DefaultLocalRepository()}
	for _, opt := range opts {
		opt(cfg)
	}

	path := dir
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		path = filepath.Join(dir, ModuleFileName)
	}

	l := &loader{cfg: cfg, seen: make(map[string]bool), graph: buildgraph.NewGraph()}
	if err := l.load(path, ""); err != nil {
		return nil, err
	}
	return l.graph, nil
}

type loader struct {
	cfg   *loadConfig
	seen  map[string]bool
	graph *buildgraph.Graph
}

// load adds the module at path and then, depth first, its local overrides.
func (l *loader) load(path, overrideName string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if l.seen[abs] {
		return nil
	}
	l.seen[abs] = true

	mf, err := ParseFile(abs)
	if err != nil {
		return err
	}

	name := mf.Name
	if name == "" {
		name = overrideName
	}
	if name == "" {
		return fmt.Errorf("%s: %w", abs, ErrNoModuleName)
	}
	if err := checkModuleName(name); err != nil {
		return fmt.Errorf("%s: %w", abs, err)
	}
	version := mf.Version
	if version == "" {
		version = DefaultVersion
	}
	coord, err := label.New(l.cfg.group, name, version)
	if err != nil {
		return fmt.Errorf("%s: %w", abs, err)
	}

	mod := buildgraph.NewModule(coord)
	for _, in := range mf.Installs {
		if err := checkRepoName(in.Name); err != nil {
			return fmt.Errorf("%s: maven.install: %w", abs, err)
		}
		artifacts := make([]buildgraph.Artifact, 0, len(in.Artifacts))
		for _, a := range in.Artifacts {
			artifacts = append(artifacts, l.artifact(a))
		}
		mod.AddConfiguration(buildgraph.NewConfiguration(in.Name, artifacts...))
	}
	l.graph.Add(mod)

	base := filepath.Dir(abs)
	for _, o := range mf.LocalOverrides {
		if o.Path == "" {
			continue
		}
		p := filepath.FromSlash(o.Path)
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		if err := l.load(filepath.Join(p, ModuleFileName), o.ModuleName); err != nil {
			return fmt.Errorf("local_path_override(%s): %w", o.ModuleName, err)
		}
	}
	return nil
}

func (l *loader) artifact(a MavenArtifact) buildgraph.Artifact {
	typ := a.Packaging
	if typ == "" {
		typ = label.DefaultArtifactType
	}
	coord := label.Coordinate{Group: a.Group, Name: a.Artifact, Version: a.Version}
	return buildgraph.Artifact{
		Coordinate: coord,
		Type:       typ,
		Classifier: a.Classifier,
		File:       l.cfg.repository.Path(coord, typ, a.Classifier),
	}
}
