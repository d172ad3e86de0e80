package depbom

import (
	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/hashing"
	"github.com/albertocavalcante/go-depbom/label"
)

// Component is a third-party artifact recorded in the document.
type Component struct {
	Coordinate label.Coordinate
	Type       bom.ComponentType

	// ArtifactType and Classifier complete the identity of the artifact.
	ArtifactType string
	Classifier   string

	// PURL is the package URL, also used as the document bom-ref.
	PURL string

	// Hashes is empty when the artifact file could not be read.
	Hashes []hashing.Hash

	Publisher   string
	Description string

	// Licenses holds one display name per license, in descriptor order.
	Licenses []string
}

// Key identifies a component within a ComponentSet.
type Key struct {
	Coordinate   label.Coordinate
	Type         bom.ComponentType
	ArtifactType string
	Classifier   string
}

// Key returns the deduplication key of c.
func (c *Component) Key() Key {
	return Key{
		Coordinate:   c.Coordinate,
		Type:         c.Type,
		ArtifactType: c.ArtifactType,
		Classifier:   c.Classifier,
	}
}

// ComponentSet is an insertion-ordered set of components.
// It is not safe for concurrent use.
type ComponentSet struct {
	index      map[Key]int
	components []*Component
}

// NewComponentSet creates an empty set.
func NewComponentSet() *ComponentSet {
	return &ComponentSet{index: make(map[Key]int)}
}

// Add inserts c unless a component with the same key is present.
// It reports whether c was inserted.
func (s *ComponentSet) Add(c *Component) bool {
	k := c.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.components)
	s.components = append(s.components, c)
	return true
}

// Contains reports whether a component with key k is present.
func (s *ComponentSet) Contains(k Key) bool {
	_, ok := s.index[k]
	return ok
}

// Get returns the component with key k.
func (s *ComponentSet) Get(k Key) (*Component, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return s.components[i], true
}

// Len returns the number of components.
func (s *ComponentSet) Len() int {
	return len(s.components)
}

// Components returns the components in insertion order.
func (s *ComponentSet) Components() []*Component {
	return s.components
}
