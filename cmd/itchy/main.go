// Package main provides the entry point for the itchy CLI.
//
// itchy crawls the comment graph of itch.io: works link to the authors who
// commented on them, and authors link to the works they commented on. The
// saved graph can then be turned into a work similarity graph in DOT format.
//
// Usage:
//
//	itchy crawl [work-url...]
//	itchy graph <output-dir>
//
// See --help for all available options.
package main

// main is the entry point for itchy.
func main() {
	Execute()
}
