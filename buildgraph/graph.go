// Package buildgraph describes the resolved dependency graph of a multi-module build.
//
// A [Build] has modules, a [Module] has named configurations, and resolving a
// [Configuration] yields the [Artifact] values it depends on. Build system
// adapters implement these interfaces; [Graph] is an in-memory implementation
// built directly or loaded from a manifest file with [LoadManifest].
package buildgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-depbom/label"
)

// ErrNotResolvable is returned by Resolve for configurations that cannot be resolved.
var ErrNotResolvable = errors.New("configuration is not resolvable")

// Artifact is one resolved file of a configuration.
type Artifact struct {
	Coordinate label.Coordinate

	// Type is the artifact type tag, e.g. "jar", "aar" or "pom".
	Type string

	// Classifier is empty for the main artifact.
	Classifier string

	// File is the path of the artifact on disk.
	File string
}

// Build is a multi-module build.
type Build interface {
	Modules() []Module
}

// Module is a unit of the build that produces an artifact with its own coordinate.
type Module interface {
	Coordinate() label.Coordinate
	Configurations() []Configuration
}

// Configuration is a named set of dependencies of a module.
type Configuration interface {
	Name() string

	// Resolve returns the resolved artifacts in resolution order.
	Resolve(ctx context.Context) ([]Artifact, error)
}

// Graph is an in-memory Build.
type Graph struct {
	modules []Module
}

// NewGraph creates a graph of modules.
func NewGraph(modules ...Module) *Graph {
	return &Graph{modules: modules}
}

// Modules returns the modules in declaration order.
func (g *Graph) Modules() []Module {
	return g.modules
}

// Add appends a module.
func (g *Graph) Add(m Module) {
	g.modules = append(g.modules, m)
}

// StaticModule is a Module with fixed configurations.
type StaticModule struct {
	coord   label.Coordinate
	configs []Configuration
}

// NewModule creates a module.
func NewModule(c label.Coordinate, configs ...Configuration) *StaticModule {
	return &StaticModule{coord: c, configs: configs}
}

func (m *StaticModule) Coordinate() label.Coordinate    { return m.coord }
func (m *StaticModule) Configurations() []Configuration { return m.configs }

// AddConfiguration appends a configuration.
func (m *StaticModule) AddConfiguration(c Configuration) {
	m.configs = append(m.configs, c)
}

// StaticConfiguration is a Configuration with a fixed resolution result.
type StaticConfiguration struct {
	name      string
	artifacts []Artifact
	err       error
}

// NewConfiguration creates a resolvable configuration.
func NewConfiguration(name string, artifacts ...Artifact) *StaticConfiguration {
	return &StaticConfiguration{name: name, artifacts: artifacts}
}

// Unresolvable creates a configuration whose resolution always fails.
// A nil reason is reported as ErrNotResolvable.
func Unresolvable(name string, reason error) *StaticConfiguration {
	if reason == nil {
		reason = ErrNotResolvable
	}
	return &StaticConfiguration{name: name, err: reason}
}

func (c *StaticConfiguration) Name() string { return c.name }

// Resolve returns the fixed artifacts or the fixed error.
func (c *StaticConfiguration) Resolve(ctx context.Context) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.name, c.err)
	}
	return c.artifacts, nil
}

var (
	_ Build         = (*Graph)(nil)
	_ Module        = (*StaticModule)(nil)
	_ Configuration = (*StaticConfiguration)(nil)
)
