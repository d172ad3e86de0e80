package buildgraph

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-depbom/label"
)

// ErrInvalidManifest is returned for manifests that do not describe a build.
var ErrInvalidManifest = errors.New("invalid build manifest")

// ManifestFormat is the syntax of a manifest file.
type ManifestFormat string

// Supported manifest syntaxes. JSON manifests are read by the YAML decoder.
const (
	ManifestYAML ManifestFormat = "yaml"
	ManifestJSON ManifestFormat = "json"
	ManifestHCL  ManifestFormat = "hcl"
)

// ManifestFormatFromPath returns the format matching the file extension.
func ManifestFormatFromPath(path string) (ManifestFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ManifestYAML, nil
	case ".json":
		return ManifestJSON, nil
	case ".hcl":
		return ManifestHCL, nil
	default:
		return "", fmt.Errorf("%w: unsupported manifest extension %q", ErrInvalidManifest, filepath.Ext(path))
	}
}

// manifest is the syntax-independent form of a manifest file.
//
// YAML:
//
//	repository: ~/.m2/repository
//	modules:
//	  - coordinate: com.example:app:1.0.0
//	    configurations:
//	      - name: runtimeClasspath
//	        artifacts:
//	          - coordinate: org.foo:bar:1.0
//	            file: libs/bar-1.0.jar
//
// HCL:
//
//	repository = "~/.m2/repository"
//	module "com.example:app:1.0.0" {
//	  configuration "runtimeClasspath" {
//	    artifact "org.foo:bar:1.0" {
//	      file = "libs/bar-1.0.jar"
//	    }
//	  }
//	}
type manifest struct {
	Repository string           `yaml:"repository" hcl:"repository,optional"`
	Modules    []manifestModule `yaml:"modules" hcl:"module,block"`
}

type manifestModule struct {
	Coordinate     string                  `yaml:"coordinate" hcl:"coordinate,label"`
	Configurations []manifestConfiguration `yaml:"configurations" hcl:"configuration,block"`
}

type manifestConfiguration struct {
	Name string `yaml:"name" hcl:"name,label"`

	// Resolvable defaults to true.
	Resolvable *bool              `yaml:"resolvable" hcl:"resolvable,optional"`
	Artifacts  []manifestArtifact `yaml:"artifacts" hcl:"artifact,block"`
}

type manifestArtifact struct {
	Coordinate string `yaml:"coordinate" hcl:"coordinate,label"`
	Type       string `yaml:"type" hcl:"type,optional"`
	Classifier string `yaml:"classifier" hcl:"classifier,optional"`
	File       string `yaml:"file" hcl:"file,optional"`
}

// LoadManifest reads a build manifest. Relative paths in the manifest are
// resolved against the manifest's directory.
func LoadManifest(path string) (*Graph, error) {
	format, err := ManifestFormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data, format, filepath.Base(path), filepath.Dir(abs))
}

// ParseManifest parses manifest content. filename is used in diagnostics and
// baseDir anchors relative paths.
func ParseManifest(data []byte, format ManifestFormat, filename, baseDir string) (*Graph, error) {
	var m manifest
	switch format {
	case ManifestYAML, ManifestJSON:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, filename, err)
		}
	case ManifestHCL:
		parser := hclparse.NewParser()
		f, diags := parser.ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidManifest, filename, diags)
		}
		diags = gohcl.DecodeBody(f.Body, nil, &m)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrInvalidManifest, filename, diags)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidManifest, format)
	}
	return m.graph(baseDir)
}

func (m *manifest) graph(baseDir string) (*Graph, error) {
	repo := DefaultLocalRepository()
	if m.Repository != "" {
		repo = Repository{Root: expandPath(m.Repository, baseDir)}
	}

	g := NewGraph()
	for i, mm := range m.Modules {
		coord, err := label.Parse(mm.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("%w: modules[%d]: %w", ErrInvalidManifest, i, err)
		}
		mod := NewModule(coord)
		for j, mc := range mm.Configurations {
			if mc.Name == "" {
				return nil, fmt.Errorf("%w: modules[%d].configurations[%d]: name is empty", ErrInvalidManifest, i, j)
			}
			if mc.Resolvable != nil && !*mc.Resolvable {
				mod.AddConfiguration(Unresolvable(mc.Name, nil))
				continue
			}
			artifacts := make([]Artifact, 0, len(mc.Artifacts))
			for _, ma := range mc.Artifacts {
				artifacts = append(artifacts, ma.artifact(repo, baseDir))
			}
			mod.AddConfiguration(NewConfiguration(mc.Name, artifacts...))
		}
		g.Add(mod)
	}
	return g, nil
}

// artifact converts a manifest entry. The coordinate is not validated here;
// malformed coordinates are reported when the graph is walked.
func (ma manifestArtifact) artifact(repo Repository, baseDir string) Artifact {
	a := Artifact{
		Coordinate: splitCoordinate(ma.Coordinate),
		Type:       ma.Type,
		Classifier: ma.Classifier,
	}
	if a.Type == "" {
		a.Type = label.DefaultArtifactType
	}
	if ma.File != "" {
		a.File = expandPath(ma.File, baseDir)
	} else {
		a.File = repo.Path(a.Coordinate, a.Type, a.Classifier)
	}
	return a
}

// splitCoordinate splits group:name:version without validating it.
func splitCoordinate(s string) label.Coordinate {
	parts := strings.SplitN(s, ":", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return label.Coordinate{Group: parts[0], Name: parts[1], Version: parts[2]}
}
