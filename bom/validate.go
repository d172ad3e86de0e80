package bom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrValidation is matched by every error reporting that a document failed
// schema validation.
var ErrValidation = errors.New("the document does not conform to the expected schema")

// JSONSchema is the embedded depbom profile of the CycloneDX 1.4 JSON schema.
// It accepts every property CycloneDX 1.4 defines but checks in full only the
// elements depbom writes, so a document it accepts is not necessarily a
// conformant CycloneDX document.
//
//go:embed schema/depbom-bom-1.4.schema.json
var JSONSchema []byte

const schemaFile = "depbom-bom-1.4.schema.json"

// getSchema compiles JSONSchema once and caches it for reuse.
var getSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(JSONSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	if err := c.AddResource(schemaFile, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	sch, err := c.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
})

// FieldError is a validation failure at one location of the document.
type FieldError struct {
	// Field is a JSON pointer into the document, e.g. "/components/0/hashes/1/content",
	// or for XML structure errors an element path, e.g. "/bom/components/component[0]/name".
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationError reports why a document does not conform to the schema.
// errors.Is(err, ErrValidation) is true for every ValidationError.
type ValidationError struct {
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ErrValidation.Error()
	case 1:
		return ErrValidation.Error() + ": " + e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d validation errors:", ErrValidation, len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the field errors for errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// Validate checks encoded document bytes against the embedded profile schema.
// XML documents are first checked token by token for unknown, misordered and
// repeated CycloneDX elements. Any failure, including bytes that cannot be
// decoded, is reported as a *ValidationError.
func Validate(data []byte, f Format) error {
	var instance any
	switch f {
	case FormatJSON:
		v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return &ValidationError{Errors: []*FieldError{{Message: "malformed JSON: " + err.Error()}}}
		}
		instance = v
	case FormatXML:
		if verr := checkXML(data); verr != nil {
			return verr
		}
		doc, err := Decode(bytes.NewReader(data), FormatXML)
		if err != nil {
			return &ValidationError{Errors: []*FieldError{{Message: err.Error()}}}
		}
		raw, err := json.Marshal(toJSON(doc))
		if err != nil {
			return fmt.Errorf("failed to convert document: %w", err)
		}
		v, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("failed to convert document: %w", err)
		}
		instance = v
	default:
		return fmt.Errorf("unsupported BOM format %q", f)
	}

	sch, err := getSchema()
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	if err := sch.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("failed to validate document: %w", err)
		}
		return fromSchemaError(verr)
	}
	return nil
}

// ValidateFile reads the document at path and validates it. The format is taken
// from the file extension.
func ValidateFile(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Validate(data, f)
}

var printer = message.NewPrinter(language.English)

// fromSchemaError flattens the leaves of a schema validation error tree.
func fromSchemaError(verr *jsonschema.ValidationError) *ValidationError {
	out := &ValidationError{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out.Add("/"+strings.Join(e.InstanceLocation, "/"), e.ErrorKind.LocalizedString(printer))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	slices.SortStableFunc(out.Errors, func(a, b *FieldError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return out
}
