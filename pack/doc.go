// Package pack assembles the final documentation pack.
//
// A build runs per-room workers concurrently to load, crop, and shuffle
// each room's plan pages, then a single writer assembles the rooms in
// their configured order and serializes the pack once. Room completion
// order never influences output order, and the serialized bytes depend
// only on the inputs and the build timestamp.
//
// Any error aborts the build before the output path is touched: the pack
// is written to a temporary file and renamed into place only on success.
package pack
