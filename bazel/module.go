// Package bazel reads the JVM dependency graph of a Bazel workspace from its
// MODULE.bazel files.
//
// The root module and every module pulled in with local_path_override are the
// modules built by the workspace. Each maven.install tag of the
// rules_jvm_external maven extension becomes a configuration named after the
// install's repository name ("maven" by default), and its artifacts resolve to
// files in a local Maven repository.
//
//	maven = use_extension("@rules_jvm_external//:extensions.bzl", "maven")
//	maven.install(
//	    artifacts = ["com.google.guava:guava:33.0.0-jre"],
//	)
//	maven.artifact(group = "junit", artifact = "junit", version = "4.13.2")
package bazel

import (
	"fmt"
	"os"
	"strings"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-depbom/internal/buildutil"
)

// DefaultInstallName is the repository name of a maven.install tag without a name.
const DefaultInstallName = "maven"

// mavenExtension is the extension name exported by rules_jvm_external.
const mavenExtension = "maven"

// ModuleFile is the part of a MODULE.bazel file relevant to JVM dependencies.
type ModuleFile struct {
	Path    string
	Name    string
	Version string

	// LocalOverrides lists local_path_override calls in file order.
	LocalOverrides []LocalPathOverride

	// Installs lists maven.install and maven.artifact tags grouped by
	// repository name, in order of first appearance.
	Installs []*MavenInstall
}

// LocalPathOverride is a local_path_override(module_name, path) call.
type LocalPathOverride struct {
	ModuleName string
	Path       string
}

// MavenInstall is the merged content of all maven tags sharing one repository name.
type MavenInstall struct {
	Name      string
	Artifacts []MavenArtifact
}

// MavenArtifact is one artifact requested from a maven repository.
type MavenArtifact struct {
	Group      string
	Artifact   string
	Version    string
	Packaging  string
	Classifier string
}

// ParseError is a syntax error in a MODULE.bazel file.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: syntax error: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads and parses a MODULE.bazel file from disk.
func ParseFile(filename string) (*ModuleFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseContent(filename, data)
}

// ParseContent parses MODULE.bazel content.
func ParseContent(filename string, content []byte) (*ModuleFile, error) {
	raw, err := build.ParseModule(filename, content)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	mf := &ModuleFile{Path: filename}
	proxies := make(map[string]bool)
	installs := make(map[string]*MavenInstall)

	install := func(name string) *MavenInstall {
		if name == "" {
			name = DefaultInstallName
		}
		if in, ok := installs[name]; ok {
			return in
		}
		in := &MavenInstall{Name: name}
		installs[name] = in
		mf.Installs = append(mf.Installs, in)
		return in
	}

	for _, stmt := range raw.Stmt {
		if name, call, ok := buildutil.Assignment(stmt); ok {
			if buildutil.IsFuncCall(call, "use_extension") && isMavenExtension(call) {
				proxies[name] = true
			}
			continue
		}

		call, ok := stmt.(*build.CallExpr)
		if !ok {
			continue
		}

		if recv, method, ok := buildutil.Method(call); ok {
			if !proxies[recv] {
				continue
			}
			switch method {
			case "install":
				in := install(buildutil.String(call, "name"))
				for _, s := range buildutil.StringList(call, "artifacts") {
					in.Artifacts = append(in.Artifacts, ParseArtifact(s))
				}
			case "artifact":
				in := install(buildutil.String(call, "name"))
				in.Artifacts = append(in.Artifacts, MavenArtifact{
					Group:      buildutil.String(call, "group"),
					Artifact:   buildutil.String(call, "artifact"),
					Version:    buildutil.String(call, "version"),
					Packaging:  buildutil.String(call, "packaging"),
					Classifier: buildutil.String(call, "classifier"),
				})
			}
			continue
		}

		switch buildutil.FuncName(call) {
		case "module":
			mf.Name = buildutil.String(call, "name")
			mf.Version = buildutil.String(call, "version")
		case "local_path_override":
			mf.LocalOverrides = append(mf.LocalOverrides, LocalPathOverride{
				ModuleName: buildutil.String(call, "module_name"),
				Path:       buildutil.String(call, "path"),
			})
		}
	}

	return mf, nil
}

// isMavenExtension reports whether a use_extension call binds the
// rules_jvm_external maven extension.
func isMavenExtension(call *build.CallExpr) bool {
	file := buildutil.String(call, "extension_bzl_file")
	if file == "" {
		file = buildutil.String(call, "")
	}
	name := buildutil.String(call, "extension_name")
	if name == "" && len(call.List) > 1 {
		if s, ok := call.List[1].(*build.StringExpr); ok {
			name = s.Value
		}
	}
	return name == mavenExtension && strings.Contains(file, "rules_jvm_external")
}

// ParseArtifact parses the rules_jvm_external coordinate forms
// group:artifact:version, group:artifact:packaging:version and
// group:artifact:packaging:classifier:version.
//
// Other forms are kept as far as they split; the walker rejects the
// resulting coordinate as malformed.
func ParseArtifact(s string) MavenArtifact {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return MavenArtifact{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	case 4:
		return MavenArtifact{Group: parts[0], Artifact: parts[1], Packaging: parts[2], Version: parts[3]}
	case 5:
		return MavenArtifact{Group: parts[0], Artifact: parts[1], Packaging: parts[2], Classifier: parts[3], Version: parts[4]}
	case 2:
		return MavenArtifact{Group: parts[0], Artifact: parts[1]}
	case 1:
		return MavenArtifact{Artifact: parts[0]}
	default:
		return MavenArtifact{
			Group:    parts[0],
			Artifact: parts[1],
			Version:  strings.Join(parts[2:], ":"),
		}
	}
}
