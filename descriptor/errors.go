package descriptor

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for descriptor lookups.
var (
	// ErrNotFound indicates the repository has no descriptor for the coordinate.
	ErrNotFound = errors.New("descriptor not found")

	// ErrNoSource indicates no descriptor source was configured.
	ErrNoSource = errors.New("no descriptor source configured")

	// ErrInvalidDescriptor indicates the fetched document is not a POM.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrDescriptorTooLarge indicates a response body over the size limit.
	ErrDescriptorTooLarge = errors.New("descriptor too large")
)

// HTTPError is returned when a repository answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Is reports 404 responses as ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound returns true if err means the descriptor does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
