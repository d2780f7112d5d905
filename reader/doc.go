// Package reader provides document-level access to PDF files: header and
// cross-reference parsing, object loading with caching, and page tree
// access.
//
// A Reader is safe for concurrent use once opened: the object cache is
// guarded, and the underlying file is read through positioned reads, so
// multiple goroutines can load pages from the same source document at the
// same time. All access is strictly read-only.
package reader
