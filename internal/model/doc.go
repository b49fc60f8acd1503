// Package model defines the data structures shared by the crawler, the
// persistence layer, the graph builder and the reports.
//
// This package contains the following main types:
//   - WorkRef / AuthorRef: node identities in the work/author graph
//   - Comment: one normalized community post
//   - Page: one window of a work's comment history
//   - ActivityEntry: one row of an author's recent posts
//   - WorkResult / AuthorResult: the payloads persisted per node
//   - CrawlSummary: statistics of a crawl run
//
// Models live in their own package so that crawler, store, graph and report
// can share them without import cycles. All persisted types serialize to JSON.
package model
