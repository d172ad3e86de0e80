package bom

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// XML wire form. Element order follows the CycloneDX 1.4 XSD sequence.

type xmlBOM struct {
	XMLName      xml.Name      `xml:"http://cyclonedx.org/schema/bom/1.4 bom"`
	SerialNumber string        `xml:"serialNumber,attr,omitempty"`
	Version      int           `xml:"version,attr"`
	Metadata     *xmlMetadata  `xml:"metadata,omitempty"`
	Components   xmlComponents `xml:"components"`
}

type xmlMetadata struct {
	Timestamp string    `xml:"timestamp,omitempty"`
	Tools     *xmlTools `xml:"tools,omitempty"`
}

type xmlTools struct {
	Tool []xmlTool `xml:"tool"`
}

type xmlTool struct {
	Vendor  string `xml:"vendor,omitempty"`
	Name    string `xml:"name,omitempty"`
	Version string `xml:"version,omitempty"`
}

type xmlComponents struct {
	Component []xmlComponent `xml:"component"`
}

type xmlComponent struct {
	Type        string       `xml:"type,attr"`
	BOMRef      string       `xml:"bom-ref,attr,omitempty"`
	Publisher   string       `xml:"publisher,omitempty"`
	Group       string       `xml:"group,omitempty"`
	Name        string       `xml:"name"`
	Version     string       `xml:"version"`
	Description string       `xml:"description,omitempty"`
	Hashes      xmlHashes    `xml:"hashes"`
	Licenses    *xmlLicenses `xml:"licenses,omitempty"`
	PURL        string       `xml:"purl,omitempty"`
}

type xmlHashes struct {
	Hash []xmlHash `xml:"hash"`
}

type xmlHash struct {
	Alg     string `xml:"alg,attr"`
	Content string `xml:",chardata"`
}

type xmlLicenses struct {
	License []xmlLicense `xml:"license"`
}

type xmlLicense struct {
	ID   string `xml:"id,omitempty"`
	Name string `xml:"name,omitempty"`
	URL  string `xml:"url,omitempty"`
}

// JSON wire form.

type jsonBOM struct {
	BOMFormat    string          `json:"bomFormat"`
	SpecVersion  string          `json:"specVersion"`
	SerialNumber string          `json:"serialNumber,omitempty"`
	Version      int             `json:"version"`
	Metadata     *jsonMetadata   `json:"metadata,omitempty"`
	Components   []jsonComponent `json:"components"`
}

type jsonMetadata struct {
	Timestamp string     `json:"timestamp,omitempty"`
	Tools     []jsonTool `json:"tools,omitempty"`
}

type jsonTool struct {
	Vendor  string `json:"vendor,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

type jsonComponent struct {
	Type        string              `json:"type"`
	BOMRef      string              `json:"bom-ref,omitempty"`
	Publisher   string              `json:"publisher,omitempty"`
	Group       string              `json:"group,omitempty"`
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description,omitempty"`
	Hashes      []jsonHash          `json:"hashes"`
	Licenses    []jsonLicenseChoice `json:"licenses,omitempty"`
	PURL        string              `json:"purl,omitempty"`
}

type jsonHash struct {
	Alg     string `json:"alg"`
	Content string `json:"content"`
}

type jsonLicenseChoice struct {
	License jsonLicense `json:"license"`
}

type jsonLicense struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Encode writes doc to w in format f.
func Encode(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatXML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(toXML(doc)); err != nil {
			return fmt.Errorf("encode XML document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(toJSON(doc)); err != nil {
			return fmt.Errorf("encode JSON document: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported BOM format %q", f)
	}
}

// Marshal returns the encoding of doc in format f.
func Marshal(doc *Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a document in format f. XML input must use the CycloneDX 1.4
// namespace.
func Decode(r io.Reader, f Format) (*Document, error) {
	switch f {
	case FormatXML:
		var x xmlBOM
		if err := xml.NewDecoder(r).Decode(&x); err != nil {
			return nil, fmt.Errorf("decode XML document: %w", err)
		}
		return fromXML(&x)
	case FormatJSON:
		var j jsonBOM
		if err := json.NewDecoder(r).Decode(&j); err != nil {
			return nil, fmt.Errorf("decode JSON document: %w", err)
		}
		return fromJSON(&j)
	default:
		return nil, fmt.Errorf("unsupported BOM format %q", f)
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func toXML(doc *Document) *xmlBOM {
	x := &xmlBOM{
		SerialNumber: doc.SerialNumber,
		Version:      doc.Version,
	}
	if m := doc.Metadata; m != nil {
		x.Metadata = &xmlMetadata{Timestamp: formatTimestamp(m.Timestamp)}
		if len(m.Tools) > 0 {
			x.Metadata.Tools = &xmlTools{}
			for _, t := range m.Tools {
				x.Metadata.Tools.Tool = append(x.Metadata.Tools.Tool, xmlTool(t))
			}
		}
	}
	for _, c := range doc.Components {
		xc := xmlComponent{
			Type:        string(c.Type),
			BOMRef:      c.BOMRef,
			Publisher:   c.Publisher,
			Group:       c.Group,
			Name:        c.Name,
			Version:     c.Version,
			Description: c.Description,
			PURL:        c.PURL,
		}
		for _, h := range c.Hashes {
			xc.Hashes.Hash = append(xc.Hashes.Hash, xmlHash{Alg: h.Algorithm, Content: h.Content})
		}
		if len(c.Licenses) > 0 {
			xc.Licenses = &xmlLicenses{}
			for _, l := range c.Licenses {
				xc.Licenses.License = append(xc.Licenses.License, xmlLicense(l))
			}
		}
		x.Components.Component = append(x.Components.Component, xc)
	}
	return x
}

func fromXML(x *xmlBOM) (*Document, error) {
	doc := &Document{
		SerialNumber: x.SerialNumber,
		Version:      x.Version,
	}
	if x.Metadata != nil {
		ts, err := parseTimestamp(x.Metadata.Timestamp)
		if err != nil {
			return nil, err
		}
		doc.Metadata = &Metadata{Timestamp: ts}
		if x.Metadata.Tools != nil {
			for _, t := range x.Metadata.Tools.Tool {
				doc.Metadata.Tools = append(doc.Metadata.Tools, Tool(t))
			}
		}
	}
	for _, xc := range x.Components.Component {
		c := Component{
			Type:        ComponentType(xc.Type),
			BOMRef:      xc.BOMRef,
			Publisher:   xc.Publisher,
			Group:       xc.Group,
			Name:        xc.Name,
			Version:     xc.Version,
			Description: xc.Description,
			Hashes:      []Hash{},
			PURL:        xc.PURL,
		}
		for _, h := range xc.Hashes.Hash {
			c.Hashes = append(c.Hashes, Hash{Algorithm: h.Alg, Content: strings.TrimSpace(h.Content)})
		}
		if xc.Licenses != nil {
			for _, l := range xc.Licenses.License {
				c.Licenses = append(c.Licenses, License(l))
			}
		}
		doc.Components = append(doc.Components, c)
	}
	return doc, nil
}

func toJSON(doc *Document) *jsonBOM {
	j := &jsonBOM{
		BOMFormat:    BOMFormat,
		SpecVersion:  SpecVersion,
		SerialNumber: doc.SerialNumber,
		Version:      doc.Version,
		Components:   make([]jsonComponent, 0, len(doc.Components)),
	}
	if m := doc.Metadata; m != nil {
		j.Metadata = &jsonMetadata{Timestamp: formatTimestamp(m.Timestamp)}
		for _, t := range m.Tools {
			j.Metadata.Tools = append(j.Metadata.Tools, jsonTool(t))
		}
	}
	for _, c := range doc.Components {
		jc := jsonComponent{
			Type:        string(c.Type),
			BOMRef:      c.BOMRef,
			Publisher:   c.Publisher,
			Group:       c.Group,
			Name:        c.Name,
			Version:     c.Version,
			Description: c.Description,
			Hashes:      make([]jsonHash, 0, len(c.Hashes)),
			PURL:        c.PURL,
		}
		for _, h := range c.Hashes {
			jc.Hashes = append(jc.Hashes, jsonHash{Alg: h.Algorithm, Content: h.Content})
		}
		for _, l := range c.Licenses {
			jc.Licenses = append(jc.Licenses, jsonLicenseChoice{License: jsonLicense(l)})
		}
		j.Components = append(j.Components, jc)
	}
	return j
}

func fromJSON(j *jsonBOM) (*Document, error) {
	if j.BOMFormat != BOMFormat {
		return nil, fmt.Errorf("not a CycloneDX document: bomFormat %q", j.BOMFormat)
	}
	doc := &Document{
		SerialNumber: j.SerialNumber,
		Version:      j.Version,
	}
	if j.Metadata != nil {
		ts, err := parseTimestamp(j.Metadata.Timestamp)
		if err != nil {
			return nil, err
		}
		doc.Metadata = &Metadata{Timestamp: ts}
		for _, t := range j.Metadata.Tools {
			doc.Metadata.Tools = append(doc.Metadata.Tools, Tool(t))
		}
	}
	for _, jc := range j.Components {
		c := Component{
			Type:        ComponentType(jc.Type),
			BOMRef:      jc.BOMRef,
			Publisher:   jc.Publisher,
			Group:       jc.Group,
			Name:        jc.Name,
			Version:     jc.Version,
			Description: jc.Description,
			Hashes:      []Hash{},
			PURL:        jc.PURL,
		}
		for _, h := range jc.Hashes {
			c.Hashes = append(c.Hashes, Hash{Algorithm: h.Alg, Content: h.Content})
		}
		for _, l := range jc.Licenses {
			c.Licenses = append(c.Licenses, License(l.License))
		}
		doc.Components = append(doc.Components, c)
	}
	return doc, nil
}
