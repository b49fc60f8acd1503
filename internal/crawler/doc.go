// Package crawler harvests comments from the itch.io community pages and
// walks the graph of works and the authors who comment on them.
//
// # Components
//
//   - Extractor: ParseCommentsPage, ParseProfilePage and their helpers turn
//     markup into model.Comment records. Reading the DOM (scanPost) is kept
//     apart from building records (buildComment), so changes in the markup
//     only touch the first half.
//   - Paginator: reassembles a work's full comment history from the
//     offset-addressed comments endpoint.
//   - ProfileReader: reads an author's recent activity listing.
//   - Crawler: owns the work and author frontiers and visited sets and runs
//     bounded rounds of expand-works then expand-authors.
//
// # Errors
//
// A *fetch.HTTPError with status 404 skips the node. Any other HTTP status,
// and any *MarkupError, aborts the crawl. Transient network errors never
// reach this package; the fetcher retries them.
//
// # Usage
//
//	c := crawler.New(fetcher, store, seeds, crawler.WithMaxRounds(3))
//	summary, err := c.Run(ctx)
package crawler
