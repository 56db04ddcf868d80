//go:build !sqlite_fts5 && !fts5

package main

// The books text index lives in an SQLite FTS5 virtual table and the
// go-sqlite3 driver only compiles the FTS5 module in behind a build tag.
// Without it the schema setup fails at startup with "no such module: fts5".
// Build and test with the tag enabled:
//
//	go build -tags sqlite_fts5 ./...
//	go test -tags sqlite_fts5 ./...
var _ = RebuildWithTheSQLiteFTS5BuildTag
