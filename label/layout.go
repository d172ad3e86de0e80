package label

import (
	"path"
	"strings"

	"github.com/package-url/packageurl-go"
)

// DefaultArtifactType is the packaging assumed when none is given.
const DefaultArtifactType = "jar"

// RepositoryDir returns the slash-separated directory of a coordinate inside a
// Maven-layout repository: {group/as/path}/{name}/{version}.
func (c Coordinate) RepositoryDir() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version)
}

// FileName returns the Maven file name for an artifact of this coordinate:
// {name}-{version}[-{classifier}].{ext}.
func (c Coordinate) FileName(ext, classifier string) string {
	if ext == "" {
		ext = DefaultArtifactType
	}
	base := c.Name + "-" + c.Version
	if classifier != "" {
		base += "-" + classifier
	}
	return base + "." + ext
}

// RepositoryPath returns the slash-separated path of an artifact relative to the
// root of a Maven-layout repository.
func (c Coordinate) RepositoryPath(ext, classifier string) string {
	return path.Join(c.RepositoryDir(), c.FileName(ext, classifier))
}

// DescriptorPath returns the relative path of the coordinate's POM descriptor.
func (c Coordinate) DescriptorPath() string {
	return c.RepositoryPath("pom", "")
}

// PackageURL returns the package URL of a Maven artifact:
//
//	pkg:maven/{group}/{name}@{version}[?classifier=..&type=..]
//
// The type qualifier is omitted for the default jar packaging.
func (c Coordinate) PackageURL(artifactType, classifier string) string {
	var qualifiers packageurl.Qualifiers
	if classifier != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "classifier", Value: classifier})
	}
	if artifactType != "" && artifactType != DefaultArtifactType {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "type", Value: artifactType})
	}
	return packageurl.NewPackageURL(packageurl.TypeMaven, c.Group, c.Name, c.Version, qualifiers, "").ToString()
}
