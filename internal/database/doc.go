// Package database provides SQLite-based storage for itchy.
//
// This package implements the CrawlDB, which stores:
//   - Raw response bodies keyed by request, used as an append-only
//     response cache shared across runs
//   - One summary row per crawl run for historical inspection
//
// The database is a single file opened through modernc.org/sqlite, a CGO-free
// driver, with WAL mode and a single writer connection.
package database
