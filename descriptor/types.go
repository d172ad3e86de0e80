package descriptor

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/albertocavalcante/go-depbom/label"
)

// Descriptor is the subset of a Maven POM used to describe a component.
type Descriptor struct {
	XMLName xml.Name `xml:"project"`

	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    string  `xml:"version"`
	Parent     *Parent `xml:"parent"`

	// Name is the human-readable project name.
	Name string `xml:"name"`

	// Description is empty when the POM has none.
	Description string `xml:"description"`

	// URL is the project home page.
	URL string `xml:"url"`

	// Organization is nil when the POM has no organization section.
	Organization *Organization `xml:"organization"`

	// Licenses keeps the declaration order of the POM.
	Licenses []License `xml:"licenses>license"`
}

// Parent is the parent POM reference.
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Organization is the organization section of a POM.
type Organization struct {
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

// License is a license entry of a POM. Either field may be empty.
type License struct {
	Name         string `xml:"name"`
	URL          string `xml:"url"`
	Distribution string `xml:"distribution"`
	Comments     string `xml:"comments"`
}

// Coordinate returns the coordinate declared by the POM, inheriting group and
// version from the parent reference when the POM omits them.
func (d *Descriptor) Coordinate() label.Coordinate {
	c := label.Coordinate{Group: d.GroupID, Name: d.ArtifactID, Version: d.Version}
	if d.Parent != nil {
		if c.Group == "" {
			c.Group = d.Parent.GroupID
		}
		if c.Version == "" {
			c.Version = d.Parent.Version
		}
	}
	return c
}

// normalize trims the surrounding whitespace that POM text nodes usually carry.
// Description is kept verbatim.
func (d *Descriptor) normalize() {
	d.GroupID = strings.TrimSpace(d.GroupID)
	d.ArtifactID = strings.TrimSpace(d.ArtifactID)
	d.Version = strings.TrimSpace(d.Version)
	d.Name = strings.TrimSpace(d.Name)
	d.URL = strings.TrimSpace(d.URL)
	if d.Parent != nil {
		d.Parent.GroupID = strings.TrimSpace(d.Parent.GroupID)
		d.Parent.ArtifactID = strings.TrimSpace(d.Parent.ArtifactID)
		d.Parent.Version = strings.TrimSpace(d.Parent.Version)
	}
	if d.Organization != nil {
		d.Organization.Name = strings.TrimSpace(d.Organization.Name)
		d.Organization.URL = strings.TrimSpace(d.Organization.URL)
	}
	for i := range d.Licenses {
		l := &d.Licenses[i]
		l.Name = strings.TrimSpace(l.Name)
		l.URL = strings.TrimSpace(l.URL)
		l.Distribution = strings.TrimSpace(l.Distribution)
		l.Comments = strings.TrimSpace(l.Comments)
	}
}

// Source fetches descriptors for coordinates.
//
// Implementations must be safe for concurrent use. A missing descriptor is
// reported with an error wrapping [ErrNotFound].
type Source interface {
	Fetch(ctx context.Context, c label.Coordinate) (*Descriptor, error)
	BaseURL() string
}

// Result is the outcome of a descriptor lookup: either Found with a descriptor,
// or not found with the reason.
type Result struct {
	Descriptor *Descriptor
	Reason     error
}

// Found returns true when a descriptor was obtained.
func (r Result) Found() bool {
	return r.Descriptor != nil
}

// Lookup fetches the descriptor for c and folds every failure into a not-found Result.
// A nil source always yields not found.
func Lookup(ctx context.Context, src Source, c label.Coordinate) Result {
	if src == nil {
		return Result{Reason: ErrNoSource}
	}
	d, err := src.Fetch(ctx, c)
	if err != nil {
		return Result{Reason: err}
	}
	if d == nil {
		return Result{Reason: ErrNotFound}
	}
	return Result{Descriptor: d}
}
