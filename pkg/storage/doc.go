// Package storage opens and migrates the finance database.
//
// # Overview
//
// Two drivers are supported: postgres (lib/pq) for deployments and
// sqlite3 for local development and tests. Queries elsewhere in the
// codebase are written with "?" placeholders and passed through Rebind,
// which rewrites them to "$n" for postgres.
//
// Migrate creates the schema idempotently on startup; there is no
// separate migration tool.
//
// The package also ships a SQL-backed snapshot store so the in-memory
// authorization state survives restarts.
package storage
