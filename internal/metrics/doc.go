// Package metrics exposes crawl counters in the Prometheus format.
//
// Collectors live on a private registry so that tests and multiple crawls
// in one process do not collide on the global default registry. A Metrics
// value satisfies both fetch.Recorder and crawler.RoundObserver, so a
// single instance can be handed to the fetcher and the crawler.
package metrics
