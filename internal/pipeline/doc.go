// Package pipeline provides a framework for executing crawl round phases in
// sequence.
//
// A crawl round is made of named steps (expanding works into authors, then
// authors into works). Each step receives the round's statistics and records
// what it did. The pipeline checks for cancellation between steps, logs each
// step, and stops on the first failure unless configured otherwise.
package pipeline
