package model

import "time"

// StopReason describes why a crawl run ended.
type StopReason string

const (
	// StopRoundLimit means the configured number of rounds was reached.
	StopRoundLimit StopReason = "round limit"

	// StopExhausted means both frontiers were empty at the start of a round.
	StopExhausted StopReason = "frontiers exhausted"

	// StopError means a non-recoverable error aborted the crawl.
	StopError StopReason = "error"

	// StopCancelled means the context was cancelled (e.g. SIGINT).
	StopCancelled StopReason = "cancelled"
)

// RoundStats holds the counters of a single crawl round.
type RoundStats struct {
	// Round is the 1-based round number.
	Round int `json:"round"`

	// WorksProcessed counts works whose comments were harvested and saved.
	WorksProcessed int `json:"works_processed"`

	// WorksMissing counts works that answered 404.
	WorksMissing int `json:"works_missing"`

	// AuthorsProcessed counts authors whose activity was harvested and saved.
	AuthorsProcessed int `json:"authors_processed"`

	// AuthorsMissing counts authors that answered 404.
	AuthorsMissing int `json:"authors_missing"`

	// CommentsHarvested counts comments collected from works and profiles.
	CommentsHarvested int `json:"comments_harvested"`

	// NewAuthors counts authors discovered during the round.
	NewAuthors int `json:"new_authors"`

	// NewWorks counts works discovered during the round.
	NewWorks int `json:"new_works"`

	// Phases lists the round steps that completed, in order.
	Phases []string `json:"phases,omitempty"`
}

// CrawlSummary describes a finished (or aborted) crawl run.
type CrawlSummary struct {
	// Seeds are the canonical URLs of the seed works.
	Seeds []string `json:"seeds"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// MaxRounds is the configured round limit.
	MaxRounds int `json:"max_rounds"`

	// Rounds holds one entry per round that was started.
	Rounds []RoundStats `json:"rounds"`

	// WorksVisited and AuthorsVisited are the sizes of the visited sets,
	// which include nodes enqueued but not yet processed.
	WorksVisited   int `json:"works_visited"`
	AuthorsVisited int `json:"authors_visited"`

	// Reason explains why the run stopped.
	Reason StopReason `json:"reason"`

	// Error is the message of the error that aborted the run, if any.
	Error string `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (s *CrawlSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// TotalComments sums the comments harvested over all rounds.
func (s *CrawlSummary) TotalComments() int {
	total := 0
	for _, r := range s.Rounds {
		total += r.CommentsHarvested
	}
	return total
}

// TotalWorksProcessed sums the works processed over all rounds.
func (s *CrawlSummary) TotalWorksProcessed() int {
	total := 0
	for _, r := range s.Rounds {
		total += r.WorksProcessed
	}
	return total
}

// TotalAuthorsProcessed sums the authors processed over all rounds.
func (s *CrawlSummary) TotalAuthorsProcessed() int {
	total := 0
	for _, r := range s.Rounds {
		total += r.AuthorsProcessed
	}
	return total
}

// Failed reports whether the run ended because of an error.
func (s *CrawlSummary) Failed() bool {
	return s.Reason == StopError
}
