package bom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// node is the allowed content of a CycloneDX 1.4 XML element.
// Children must appear in declaration order, each at most max times
// (0 is unbounded).
type node struct {
	children []child
	leaf     bool // text only
	opaque   bool // content not checked
}

type child struct {
	name string
	max  int
	node *node
}

func (n *node) index(name string) int {
	for i, c := range n.children {
		if c.name == name {
			return i
		}
	}
	return -1
}

var (
	textNode   = &node{leaf: true}
	opaqueNode = &node{opaque: true}
)

func seq(children ...child) *node { return &node{children: children} }
func one(name string, n *node) child { return child{name: name, max: 1, node: n} }
func many(name string, n *node) child { return child{name: name, node: n} }

// xmlGrammar follows the element sequences of the CycloneDX 1.4 XSD. Elements
// the document model does not carry are accepted in their position but their
// content is not inspected.
var xmlGrammar = func() *node {
	hashes := seq(many("hash", textNode))
	license := seq(
		one("id", textNode),
		one("name", textNode),
		one("text", opaqueNode),
		one("url", textNode),
	)
	licenses := seq(many("license", license), one("expression", textNode))

	tool := seq(
		one("vendor", textNode),
		one("name", textNode),
		one("version", textNode),
		one("hashes", hashes),
		one("externalReferences", opaqueNode),
	)

	component := &node{}
	components := seq(many("component", component))
	component.children = []child{
		one("supplier", opaqueNode),
		one("author", textNode),
		one("publisher", textNode),
		one("group", textNode),
		one("name", textNode),
		one("version", textNode),
		one("description", textNode),
		one("scope", textNode),
		one("hashes", hashes),
		one("licenses", licenses),
		one("copyright", textNode),
		one("cpe", textNode),
		one("purl", textNode),
		one("swid", opaqueNode),
		one("modified", textNode),
		one("pedigree", opaqueNode),
		one("externalReferences", opaqueNode),
		one("properties", opaqueNode),
		one("components", components),
		one("evidence", opaqueNode),
		one("releaseNotes", opaqueNode),
	}

	metadata := seq(
		one("timestamp", textNode),
		one("tools", seq(many("tool", tool))),
		one("authors", opaqueNode),
		one("component", component),
		one("manufacture", opaqueNode),
		one("supplier", opaqueNode),
		one("licenses", licenses),
		one("properties", opaqueNode),
	)

	return seq(
		one("metadata", metadata),
		one("components", components),
		one("services", opaqueNode),
		one("externalReferences", opaqueNode),
		one("dependencies", opaqueNode),
		one("compositions", opaqueNode),
		one("properties", opaqueNode),
		one("vulnerabilities", opaqueNode),
	)
}()

// checkXML walks the tokens of an XML document and reports elements of the
// CycloneDX namespace that are unknown, out of order or repeated, text where
// only elements are allowed, and content outside the root element. Elements of
// other namespaces are skipped.
func checkXML(data []byte) *ValidationError {
	out := &ValidationError{}
	d := xml.NewDecoder(bytes.NewReader(data))
	root := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Add("", "malformed XML: "+err.Error())
			return out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root {
				out.Add("/"+t.Name.Local, "unexpected element after the document root")
				return out
			}
			root = true
			if t.Name.Space != XMLNamespace || t.Name.Local != "bom" {
				out.Add("", fmt.Sprintf("root element must be bom in namespace %s", XMLNamespace))
				return out
			}
			if err := walkXML(d, xmlGrammar, "/bom", out); err != nil {
				out.Add("", "malformed XML: "+err.Error())
				return out
			}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				out.Add("", "text outside the document root")
				return out
			}
		}
	}
	if !root {
		out.Add("", "missing document root")
	}
	if len(out.Errors) == 0 {
		return nil
	}
	return out
}

// walkXML checks the content of the element just opened against n and
// consumes tokens up to its end element.
func walkXML(d *xml.Decoder, n *node, path string, out *ValidationError) error {
	if n.opaque {
		return d.Skip()
	}
	counts := make([]int, len(n.children))
	last := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.CharData:
			if !n.leaf && len(bytes.TrimSpace(t)) > 0 {
				out.Add(path, "unexpected text content")
			}
		case xml.StartElement:
			if t.Name.Space != XMLNamespace {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			i := -1
			if !n.leaf {
				i = n.index(t.Name.Local)
			}
			if i < 0 {
				out.Add(path+"/"+t.Name.Local, "unexpected element")
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}

			c := n.children[i]
			elemPath := path + "/" + c.name
			if c.max != 1 {
				elemPath = fmt.Sprintf("%s[%d]", elemPath, counts[i])
			}
			switch {
			case i < last:
				out.Add(elemPath, fmt.Sprintf("element out of order: must precede %s", n.children[last].name))
			case c.max > 0 && counts[i] >= c.max:
				out.Add(elemPath, "duplicate element")
			}
			counts[i]++
			last = max(last, i)

			if err := walkXML(d, c.node, elemPath, out); err != nil {
				return err
			}
		}
	}
}
