package bom

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// CycloneDX identifiers written into every document.
const (
	BOMFormat    = "CycloneDX"
	SpecVersion  = "1.4"
	XMLNamespace = "http://cyclonedx.org/schema/bom/1.4"
)

// ComponentType classifies a component.
type ComponentType string

// Component types defined by CycloneDX 1.4.
const (
	TypeApplication     ComponentType = "application"
	TypeFramework       ComponentType = "framework"
	TypeLibrary         ComponentType = "library"
	TypeContainer       ComponentType = "container"
	TypeOperatingSystem ComponentType = "operating-system"
	TypeDevice          ComponentType = "device"
	TypeFirmware        ComponentType = "firmware"
	TypeFile            ComponentType = "file"
)

// Document is a CycloneDX bill of materials.
type Document struct {
	// SerialNumber is a urn:uuid identifying the document; empty omits it.
	SerialNumber string

	// Version is the revision of the document, starting at 1.
	Version int

	// Metadata is optional.
	Metadata *Metadata

	Components []Component
}

// Metadata describes when and by what the document was produced.
type Metadata struct {
	// Timestamp is omitted when zero.
	Timestamp time.Time
	Tools     []Tool
}

// Tool is a producer of the document.
type Tool struct {
	Vendor  string
	Name    string
	Version string
}

// Component is one entry of the document.
//
// Publisher, Description and Licenses are omitted from the encoded form when
// empty. Hashes are always encoded, possibly as an empty list.
type Component struct {
	Type        ComponentType
	BOMRef      string
	Publisher   string
	Group       string
	Name        string
	Version     string
	Description string
	Hashes      []Hash
	Licenses    []License
	PURL        string
}

// Hash is one digest of a component's content.
type Hash struct {
	// Algorithm is the CycloneDX algorithm name, e.g. "SHA-256".
	Algorithm string

	// Content is the lower-case hex digest.
	Content string
}

// License identifies a license by SPDX ID or by name. URL is optional.
type License struct {
	ID   string
	Name string
	URL  string
}

// Format is an encoding of a Document.
type Format string

// Supported formats.
const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatXML

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// MediaType returns the IANA media type of the format.
func (f Format) MediaType() string {
	switch f {
	case FormatJSON:
		return "application/vnd.cyclonedx+json"
	default:
		return "application/vnd.cyclonedx+xml"
	}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported BOM format %q: want xml or json", s)
	}
}

// FormatFromPath returns the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot determine BOM format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}

// SerialNumber derives a version-5 style urn:uuid from seeds. The same seeds in
// the same order always give the same serial number.
func SerialNumber(seeds ...string) string {
	h := sha256.New()
	for _, s := range seeds {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	uuid := h.Sum(nil)[:16]

	uuid[6] = (uuid[6] & 0x0f) | 0x50
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("urn:uuid:%x-%x-%x-%x-%x", uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}
