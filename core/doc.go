// Package core provides low-level PDF parsing and serialization primitives.
//
// This package implements the fundamental building blocks for working with PDF
// files: all eight PDF object types (null, boolean, integer, real, string,
// name, array, and dictionary), streams, indirect references, cross-reference
// tables (both traditional tables and PDF 1.5+ xref streams), and object
// streams.
//
// # Object Types
//
// PDF defines eight basic object types, all implemented as types satisfying
// the Object interface:
//
//   - [Null] - represents the PDF null object
//   - [Bool] - represents PDF boolean values (true/false)
//   - [Int] - represents PDF integers
//   - [Real] - represents PDF real numbers (floating point)
//   - [String] - represents PDF string objects (literal or hexadecimal)
//   - [Name] - represents PDF name objects (e.g., /Type, /MediaBox)
//   - [Array] - represents PDF arrays
//   - [Dict] - represents PDF dictionaries
//
// Additionally, [Stream] represents a PDF stream (dictionary + binary data),
// and [IndirectRef] represents a reference to an indirect object.
//
// # Parsing
//
// The [Parser] type handles parsing PDF syntax from an io.Reader. The [Lexer]
// type provides tokenization of PDF input. The [XRefParser] type locates and
// parses cross-reference tables, following /Prev chains across incremental
// updates, and the [ObjectStream] type extracts objects stored inside
// compressed object streams.
//
// # Serialization
//
// [WriteObject] serializes any Object back to PDF syntax. Serialization is
// deterministic: dictionary keys are emitted in sorted order, so writing the
// same object graph twice produces identical bytes. This property is what
// makes reproducible output documents possible.
package core
