package depbom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/hashing"
	"github.com/albertocavalcante/go-depbom/label"
)

func sampleSet() *ComponentSet {
	s := NewComponentSet()
	s.Add(&Component{
		Coordinate:   label.Must("org.foo", "bar", "1.0"),
		Type:         bom.TypeLibrary,
		ArtifactType: "jar",
		PURL:         "pkg:maven/org.foo/bar@1.0",
		Hashes:       hashing.Bytes([]byte("bar")),
		Publisher:    "Acme",
		Licenses:     []string{"MIT"},
	})
	s.Add(&Component{
		Coordinate:   label.Must("org.foo", "unreadable", "1.0"),
		Type:         bom.TypeLibrary,
		ArtifactType: "jar",
		PURL:         "pkg:maven/org.foo/unreadable@1.0",
		Hashes:       []hashing.Hash{},
	})
	return s
}

func TestAssembler_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "bom.xml")
	a := NewAssembler(path, bom.FormatXML)
	if a.State() != StateEmpty {
		t.Fatalf("initial State() = %s", a.State())
	}

	if err := a.Serialize(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Serialize() before Assemble error = %v, want ErrInvalidTransition", err)
	}

	meta := newMetadata(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC), bom.Tool{Name: ToolName})
	if err := a.Assemble(sampleSet(), meta); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if a.State() != StateAssembled {
		t.Errorf("State() = %s, want assembled", a.State())
	}
	doc := a.Document()
	if len(doc.Components) != 2 || doc.Version != 1 || !strings.HasPrefix(doc.SerialNumber, "urn:uuid:") {
		t.Errorf("Document() = %+v", doc)
	}
	if got := doc.Components[0]; got.Publisher != "Acme" || got.BOMRef != got.PURL || len(got.Hashes) != len(hashing.Algorithms) {
		t.Errorf("Components[0] = %+v", got)
	}
	if a.Validate() == nil {
		t.Error("Validate() before Serialize expected error")
	}

	if err := a.Serialize(); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if a.State() != StateSerialized {
		t.Errorf("State() = %s, want serialized", a.State())
	}
	if err := bom.VerifyDigest(path, a.Digest()); err != nil {
		t.Errorf("VerifyDigest() error = %v", err)
	}

	if err := a.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if a.State() != StateValidated {
		t.Errorf("State() = %s, want validated", a.State())
	}
	if err := a.Assemble(sampleSet(), nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Assemble() after Validate error = %v, want ErrInvalidTransition", err)
	}
}

func TestAssembler_ValidationFailed(t *testing.T) {
	s := NewComponentSet()
	s.Add(&Component{
		Coordinate: label.Must("org.foo", "bar", "1.0"),
		Type:       bom.TypeLibrary,
		Hashes:     []hashing.Hash{{Algorithm: hashing.SHA1, Value: "not-a-digest"}},
	})

	for _, f := range []bom.Format{bom.FormatXML, bom.FormatJSON} {
		t.Run(string(f), func(t *testing.T) {
			a := NewAssembler(filepath.Join(t.TempDir(), "bom"+f.Ext()), f)
			if err := a.Assemble(s, nil); err != nil {
				t.Fatal(err)
			}
			if err := a.Serialize(); err != nil {
				t.Fatal(err)
			}

			err := a.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
			var se *StageError
			if !errors.As(err, &se) || se.Stage != StageValidate {
				t.Errorf("Validate() error = %v, want validate StageError", err)
			}
			if !strings.Contains(err.Error(), "the document does not conform to the expected schema") {
				t.Errorf("error message = %q", err.Error())
			}
			if a.State() != StateValidationFailed {
				t.Errorf("State() = %s, want validation-failed", a.State())
			}
			if err := a.Validate(); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("second Validate() error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestAssembler_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "reports")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAssembler(filepath.Join(blocker, "bom.xml"), bom.FormatXML)
	if err := a.Assemble(sampleSet(), nil); err != nil {
		t.Fatal(err)
	}
	err := a.Serialize()
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageWrite {
		t.Fatalf("Serialize() error = %v, want write StageError", err)
	}
	if a.State() != StateAssembled {
		t.Errorf("State() = %s, want assembled after failed write", a.State())
	}
}

func TestAssembler_SerialNumberDeterministic(t *testing.T) {
	a := NewAssembler("unused.xml", bom.FormatXML)
	b := NewAssembler("unused.xml", bom.FormatXML)
	if err := a.Assemble(sampleSet(), nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Assemble(sampleSet(), nil); err != nil {
		t.Fatal(err)
	}
	if a.Document().SerialNumber != b.Document().SerialNumber {
		t.Error("SerialNumber differs for identical component sets")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateEmpty:            "empty",
		StateAssembled:        "assembled",
		StateSerialized:       "serialized",
		StateValidated:        "validated",
		StateValidationFailed: "validation-failed",
		State(42):             "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
