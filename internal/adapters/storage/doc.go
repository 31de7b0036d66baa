// Package storage provides ports.BlobStore implementations for the quote
// store's persisted mirror.
//
// Drivers:
//   - file:   one JSON file per key, replaced by write-to-temp then rename
//   - sqlite: a key/value table in an SQLite database (modernc.org/sqlite, no cgo)
//   - memory: process-local map, for tests and ephemeral runs
//
// Every driver replaces a blob as a whole. A reader never observes a
// partially written blob.
package storage
