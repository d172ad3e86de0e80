package buildgraph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/go-depbom/label"
)

// Repository is a Maven-layout directory holding resolved artifact files.
type Repository struct {
	Root string
}

// DefaultLocalRepository returns ~/.m2/repository, or a relative
// .m2/repository when the home directory is unknown.
func DefaultLocalRepository() Repository {
	home, err := os.UserHomeDir()
	if err != nil {
		return Repository{Root: filepath.Join(".m2", "repository")}
	}
	return Repository{Root: filepath.Join(home, ".m2", "repository")}
}

// Path returns the location of an artifact file inside the repository.
func (r Repository) Path(c label.Coordinate, artifactType, classifier string) string {
	return filepath.Join(r.Root, filepath.FromSlash(c.RepositoryPath(extension(artifactType), classifier)))
}

// extension maps an artifact type to its file extension.
func extension(artifactType string) string {
	switch artifactType {
	case "", "bundle", "maven-plugin", "test-jar", "ejb", "java-source", "javadoc":
		return label.DefaultArtifactType
	default:
		return artifactType
	}
}

// expandPath resolves ~ and makes path relative to base.
func expandPath(path, base string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) || base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
