package bazel

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is returned for module or repository names Bazel would reject.
var ErrInvalidName = errors.New("invalid name")

var (
	moduleNameRegex = regexp.MustCompile(`^[a-z]([a-z0-9._-]*[a-z0-9])?$`)
	repoNameRegex   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)
)

// checkModuleName validates a module() or local_path_override module name.
func checkModuleName(name string) error {
	if !moduleNameRegex.MatchString(name) {
		return fmt.Errorf("%w: module name %q must match [a-z]([a-z0-9._-]*[a-z0-9])?", ErrInvalidName, name)
	}
	return nil
}

// checkRepoName validates the repository name of a maven.install tag.
func checkRepoName(name string) error {
	if !repoNameRegex.MatchString(name) {
		return fmt.Errorf("%w: repository name %q", ErrInvalidName, name)
	}
	return nil
}
