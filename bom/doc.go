// Package bom models CycloneDX 1.4 documents and handles their encoding and validation.
//
// A [Document] is format neutral. [Encode] writes it as XML (the default) or JSON,
// [Decode] reads either back, and [Validate] checks encoded bytes against
// [JSONSchema], the embedded depbom profile of the CycloneDX 1.4 schema.
// XML documents first get a structural pass over their tokens that follows the
// element sequences of the 1.4 XSD. They are then decoded and validated through
// the same schema as JSON ones, so both formats follow one set of rules.
//
// Basic usage:
//
//	doc := &bom.Document{Version: 1, Components: components}
//	doc.SerialNumber = bom.SerialNumber(keys...)
//	var buf bytes.Buffer
//	if err := bom.Encode(&buf, doc, bom.FormatXML); err != nil {
//	    return err
//	}
//	if err := bom.Validate(buf.Bytes(), bom.FormatXML); err != nil {
//	    // errors.Is(err, bom.ErrValidation)
//	}
package bom
