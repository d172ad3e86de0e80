package depbom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/albertocavalcante/go-depbom/buildgraph"
	"github.com/albertocavalcante/go-depbom/label"
)

func writeArtifact(t *testing.T, dir string, c label.Coordinate, content string) buildgraph.Artifact {
	t.Helper()
	path := filepath.Join(dir, c.FileName("jar", ""))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return buildgraph.Artifact{Coordinate: c, Type: "jar", File: path}
}

func coordinates(set *ComponentSet) []string {
	var out []string
	for _, c := range set.Components() {
		s := c.Coordinate.String()
		if c.Classifier != "" {
			s += ":" + c.Classifier
		}
		out = append(out, s)
	}
	return out
}

func assertCoordinates(t *testing.T, set *ComponentSet, want ...string) {
	t.Helper()
	got := coordinates(set)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("components = %v, want %v", got, want)
	}
}

func walk(t *testing.T, b buildgraph.Build, opts ...Option) *ComponentSet {
	t.Helper()
	w, err := NewWalker(opts...)
	if err != nil {
		t.Fatalf("NewWalker() error = %v", err)
	}
	set, err := w.Walk(context.Background(), b)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return set
}

func TestWalk_ExcludesBuiltModules(t *testing.T) {
	dir := t.TempDir()
	lib := label.Must("org.foo", "lib", "1.0")
	bar := writeArtifact(t, dir, label.Must("org.foo", "bar", "1.0"), "bar")
	libJar := writeArtifact(t, dir, lib, "lib")
	libOther := writeArtifact(t, dir, label.Must("org.foo", "lib", "2.0"), "lib 2")

	g := buildgraph.NewGraph(
		buildgraph.NewModule(label.Must("org.foo", "app", "1.0"),
			buildgraph.NewConfiguration("runtimeClasspath", libJar, bar, libOther)),
		buildgraph.NewModule(lib),
	)

	set := walk(t, g)
	assertCoordinates(t, set, "org.foo:bar:1.0", "org.foo:lib:2.0")
}

func TestWalk_ConfigurationFiltering(t *testing.T) {
	dir := t.TempDir()
	a := writeArtifact(t, dir, label.Must("g", "a", "1"), "a")
	b := writeArtifact(t, dir, label.Must("g", "b", "1"), "b")
	c := writeArtifact(t, dir, label.Must("g", "c", "1"), "c")

	g := buildgraph.NewGraph(buildgraph.NewModule(label.Must("g", "app", "1"),
		buildgraph.NewConfiguration("implementation", a),
		buildgraph.NewConfiguration("custom", b),
		buildgraph.NewConfiguration("runtimeClasspath", c),
	))

	tests := []struct {
		name string
		opts []Option
		want []string
	}{
		{"defaults", nil, []string{"g:b:1", "g:c:1"}},
		{"additional", []Option{WithAdditionalExclusions("custom")}, []string{"g:c:1"}},
		{"replaced", []Option{WithExcludedConfigurations("runtimeClasspath")}, []string{"g:a:1", "g:b:1"}},
		{"none", []Option{WithExcludedConfigurations()}, []string{"g:a:1", "g:b:1", "g:c:1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCoordinates(t, walk(t, g, tt.opts...), tt.want...)
		})
	}
}

func TestWalk_Dedup(t *testing.T) {
	dir := t.TempDir()
	bar := writeArtifact(t, dir, label.Must("org.foo", "bar", "1.0"), "bar")
	barSources := bar
	barSources.Classifier = "sources"

	g := buildgraph.NewGraph(
		buildgraph.NewModule(label.Must("org.foo", "app", "1.0"),
			buildgraph.NewConfiguration("compileClasspath", bar),
			buildgraph.NewConfiguration("runtimeClasspath", bar, barSources)),
		buildgraph.NewModule(label.Must("org.foo", "web", "1.0"),
			buildgraph.NewConfiguration("runtimeClasspath", bar)),
	)

	assertCoordinates(t, walk(t, g), "org.foo:bar:1.0", "org.foo:bar:1.0:sources")
}

func TestWalk_EmptyBuild(t *testing.T) {
	g := buildgraph.NewGraph(
		buildgraph.NewModule(label.Must("g", "empty", "1")),
		buildgraph.NewModule(label.Must("g", "noartifacts", "1"), buildgraph.NewConfiguration("runtimeClasspath")),
	)
	if set := walk(t, g); set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestWalk_UnresolvableSkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeArtifact(t, dir, label.Must("g", "a", "1"), "a")

	g := buildgraph.NewGraph(buildgraph.NewModule(label.Must("g", "app", "1"),
		buildgraph.Unresolvable("annotationProcessor", nil),
		buildgraph.NewConfiguration("runtimeClasspath", a),
	))
	assertCoordinates(t, walk(t, g), "g:a:1")
}

func TestWalk_MalformedCoordinate(t *testing.T) {
	g := buildgraph.NewGraph(buildgraph.NewModule(label.Must("g", "app", "1"),
		buildgraph.NewConfiguration("runtimeClasspath", buildgraph.Artifact{
			Coordinate: label.Coordinate{Group: "g", Name: "a"},
		}),
	))

	w, err := NewWalker()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Walk(context.Background(), g); !errors.Is(err, ErrMalformedCoordinate) {
		t.Errorf("Walk() error = %v, want ErrMalformedCoordinate", err)
	}
}

func TestWalk_WorkersKeepOrder(t *testing.T) {
	dir := t.TempDir()
	var artifacts []buildgraph.Artifact
	var want []string
	for i := range 25 {
		c := label.Must("g", fmt.Sprintf("a%02d", i), "1")
		artifacts = append(artifacts, writeArtifact(t, dir, c, c.String()))
		want = append(want, c.String())
	}
	g := buildgraph.NewGraph(buildgraph.NewModule(label.Must("g", "app", "1"),
		buildgraph.NewConfiguration("runtimeClasspath", artifacts...)))

	sequential := walk(t, g)
	parallel := walk(t, g, WithWorkers(8), WithDescriptorSource(stubSource{}))

	assertCoordinates(t, sequential, want...)
	assertCoordinates(t, parallel, want...)
	for i, c := range parallel.Components() {
		if fmt.Sprint(c.Hashes) != fmt.Sprint(sequential.Components()[i].Hashes) {
			t.Errorf("component %d hashes differ between runs", i)
		}
	}
}

func TestWalk_ContextCanceled(t *testing.T) {
	g := buildgraph.NewGraph(buildgraph.NewModule(label.Must("g", "app", "1"),
		buildgraph.NewConfiguration("runtimeClasspath")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := NewWalker()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Walk(ctx, g); !errors.Is(err, context.Canceled) {
		t.Errorf("Walk() error = %v, want context.Canceled", err)
	}
}

func TestBuiltModules(t *testing.T) {
	g := buildgraph.NewGraph(
		buildgraph.NewModule(label.Must("g", "a", "1")),
		buildgraph.NewModule(label.Must("", "b", "2")),
	)
	built := BuiltModules(g)
	for _, k := range []string{"g:a:1", ":b:2"} {
		if _, ok := built[k]; !ok {
			t.Errorf("BuiltModules() missing %s", k)
		}
	}
	if len(built) != 2 {
		t.Errorf("len(BuiltModules()) = %d, want 2", len(built))
	}
}
