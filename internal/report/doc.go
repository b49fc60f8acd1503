// Package report renders crawl summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown for sharing, with a round table and a
//     mermaid chart of node outcomes
//   - JSONWriter: Structured JSON output for tool integration
//
// Writers implement the Writer interface, so they can be used
// interchangeably and combined with MultiWriter.
package report
