package depbom

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/albertocavalcante/go-depbom/bom"
)

// State is the progress of an Assembler.
type State int

// Assembler states. Each step moves exactly one state forward; ValidationFailed
// is terminal.
const (
	StateEmpty State = iota
	StateAssembled
	StateSerialized
	StateValidated
	StateValidationFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAssembled:
		return "assembled"
	case StateSerialized:
		return "serialized"
	case StateValidated:
		return "validated"
	case StateValidationFailed:
		return "validation-failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Assembler builds, writes and validates one document.
type Assembler struct {
	path   string
	format bom.Format
	state  State
	doc    *bom.Document
	digest digest.Digest
}

// NewAssembler creates an Assembler that writes to path in format f.
func NewAssembler(path string, f bom.Format) *Assembler {
	return &Assembler{path: path, format: f}
}

// State returns the current state.
func (a *Assembler) State() State { return a.state }

// Path returns the document path.
func (a *Assembler) Path() string { return a.path }

// Document returns the assembled document, or nil before Assemble.
func (a *Assembler) Document() *bom.Document { return a.doc }

// Digest returns the content digest of the written document, or "" before Serialize.
func (a *Assembler) Digest() digest.Digest { return a.digest }

func (a *Assembler) transition(from, to State) error {
	if a.state != from {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.state, to)
	}
	return nil
}

// Assemble builds the document from set. A nil meta omits metadata.
func (a *Assembler) Assemble(set *ComponentSet, meta *bom.Metadata) error {
	if err := a.transition(StateEmpty, StateAssembled); err != nil {
		return err
	}

	doc := &bom.Document{Version: 1, Metadata: meta}
	seeds := make([]string, 0, set.Len())
	for _, c := range set.Components() {
		doc.Components = append(doc.Components, toBOMComponent(c))
		seeds = append(seeds, c.PURL)
	}
	doc.SerialNumber = bom.SerialNumber(seeds...)

	a.doc = doc
	a.state = StateAssembled
	return nil
}

// Serialize encodes the document and writes it to the document path, creating
// parent directories.
func (a *Assembler) Serialize() error {
	if err := a.transition(StateAssembled, StateSerialized); err != nil {
		return err
	}

	data, err := bom.Marshal(a.doc, a.format)
	if err != nil {
		return stageError(StageSerialize, err)
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return stageError(StageWrite, fmt.Errorf("failed to create output directory: %w", err))
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return stageError(StageWrite, fmt.Errorf("failed to write %s: %w", a.path, err))
	}

	a.digest = bom.Digest(data)
	a.state = StateSerialized
	return nil
}

// Validate re-reads the written document and checks it against the schema.
// A failure is terminal.
func (a *Assembler) Validate() error {
	if err := a.transition(StateSerialized, StateValidated); err != nil {
		return err
	}

	if err := bom.ValidateFile(a.path); err != nil {
		a.state = StateValidationFailed
		return stageError(StageValidate, err)
	}
	a.state = StateValidated
	return nil
}

func toBOMComponent(c *Component) bom.Component {
	out := bom.Component{
		Type:        c.Type,
		BOMRef:      c.PURL,
		Publisher:   c.Publisher,
		Group:       c.Coordinate.Group,
		Name:        c.Coordinate.Name,
		Version:     c.Coordinate.Version,
		Description: c.Description,
		Hashes:      make([]bom.Hash, 0, len(c.Hashes)),
		PURL:        c.PURL,
	}
	for _, h := range c.Hashes {
		out.Hashes = append(out.Hashes, bom.Hash{Algorithm: string(h.Algorithm), Content: h.Value})
	}
	for _, l := range c.Licenses {
		out.Licenses = append(out.Licenses, bom.License{Name: l})
	}
	return out
}

func newMetadata(now time.Time, tool bom.Tool) *bom.Metadata {
	return &bom.Metadata{Timestamp: now.UTC().Truncate(time.Second), Tools: []bom.Tool{tool}}
}
