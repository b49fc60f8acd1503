package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mati7337/itchy-graphs/internal/fetch"
	"github.com/mati7337/itchy-graphs/internal/itch"
	"github.com/mati7337/itchy-graphs/internal/model"
	"github.com/mati7337/itchy-graphs/internal/pipeline"
)

// DefaultMaxRounds is the default number of crawl rounds.
const DefaultMaxRounds = 3

// Names of the round steps.
const (
	StepExpandWorks   = "expand-works"
	StepExpandAuthors = "expand-authors"
)

// Saver persists the result of a processed node. *store.Store implements
// it. The key is the raw node key; the saver makes it file-name safe.
type Saver interface {
	Save(kind model.NodeKind, key string, payload any) error
}

// RoundObserver is notified after every round, including a round that
// ended in an error.
type RoundObserver interface {
	RoundFinished(stats model.RoundStats)
}

// RoundObserverFunc adapts a function into a RoundObserver.
type RoundObserverFunc func(stats model.RoundStats)

// RoundFinished calls f.
func (f RoundObserverFunc) RoundFinished(stats model.RoundStats) {
	f(stats)
}

// Crawler walks the bipartite graph of works and authors.
//
// Each round first expands the work frontier into authors (every commenter
// not seen before), then expands the author frontier into works (every
// game thread in the author's recent posts not seen before). Authors found
// in the first step are processed in the second step of the same round;
// works found in the second step wait for the next round. A node enters a
// frontier at most once per crawl.
type Crawler struct {
	fetcher  Fetcher
	pages    *Paginator
	profiles *ProfileReader
	saver    Saver

	seeds     []model.WorkRef
	maxRounds int

	logger   *slog.Logger
	observer RoundObserver
	now      func() time.Time

	works          Frontier[model.WorkRef]
	authors        Frontier[model.AuthorRef]
	visitedWorks   *Visited[model.WorkRef]
	visitedAuthors *Visited[model.AuthorRef]
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxRounds sets the number of rounds to run. Zero or less means no
// limit; the crawl then ends only when both frontiers are empty.
func WithMaxRounds(n int) Option {
	return func(c *Crawler) {
		c.maxRounds = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithRoundObserver registers an observer for round statistics.
func WithRoundObserver(observer RoundObserver) Option {
	return func(c *Crawler) {
		c.observer = observer
	}
}

// WithClock replaces time.Now for the summary timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		c.now = now
	}
}

// New creates a Crawler that starts from seeds. Duplicate seeds are
// scheduled once.
func New(fetcher Fetcher, saver Saver, seeds []model.WorkRef, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:        fetcher,
		profiles:       NewProfileReader(fetcher),
		saver:          saver,
		maxRounds:      DefaultMaxRounds,
		now:            time.Now,
		visitedWorks:   NewVisited[model.WorkRef](),
		visitedAuthors: NewVisited[model.AuthorRef](),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.pages = NewPaginator(fetcher, c.logger)

	for _, seed := range seeds {
		if c.visitedWorks.Add(seed) {
			c.works.Push(seed)
			c.seeds = append(c.seeds, seed)
		}
	}

	return c
}

// VisitedWorks returns the number of works ever scheduled.
func (c *Crawler) VisitedWorks() int {
	return c.visitedWorks.Len()
}

// VisitedAuthors returns the number of authors ever scheduled.
func (c *Crawler) VisitedAuthors() int {
	return c.visitedAuthors.Len()
}

// Run crawls until the round limit is passed or both frontiers are empty
// at the start of a round. Any error other than a 404 aborts the crawl;
// the summary is returned in every case and records why the run stopped.
func (c *Crawler) Run(ctx context.Context) (*model.CrawlSummary, error) {
	summary := &model.CrawlSummary{
		Seeds:     make([]string, 0, len(c.seeds)),
		StartedAt: c.now(),
		MaxRounds: c.maxRounds,
		Rounds:    make([]model.RoundStats, 0),
	}
	for _, seed := range c.seeds {
		summary.Seeds = append(summary.Seeds, itch.CanonicalWorkURL(seed))
	}

	p := pipeline.New(pipeline.WithLogger(c.logger))
	p.AddSteps(
		pipeline.NewStep(StepExpandWorks, c.expandWorks),
		pipeline.NewStep(StepExpandAuthors, c.expandAuthors),
	)
	c.logger.Info("crawl started",
		"seeds", len(summary.Seeds),
		"max_rounds", c.maxRounds,
		"steps", p.StepNames(),
	)

	err := c.runRounds(ctx, p, summary)

	summary.FinishedAt = c.now()
	summary.WorksVisited = c.visitedWorks.Len()
	summary.AuthorsVisited = c.visitedAuthors.Len()

	if err != nil {
		summary.Error = err.Error()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			summary.Reason = model.StopCancelled
		} else {
			summary.Reason = model.StopError
		}
		c.logger.Error("crawl aborted",
			"reason", summary.Reason,
			"rounds", len(summary.Rounds),
			"error", err,
		)
		return summary, err
	}

	c.logger.Info("crawl finished",
		"reason", summary.Reason,
		"rounds", len(summary.Rounds),
		"works", summary.WorksVisited,
		"authors", summary.AuthorsVisited,
	)
	return summary, nil
}

func (c *Crawler) runRounds(ctx context.Context, p *pipeline.Pipeline, summary *model.CrawlSummary) error {
	for round := 1; ; round++ {
		if c.maxRounds > 0 && round > c.maxRounds {
			summary.Reason = model.StopRoundLimit
			return nil
		}
		if c.works.Len() == 0 && c.authors.Len() == 0 {
			summary.Reason = model.StopExhausted
			return nil
		}

		c.logger.Info("starting round",
			"round", round,
			"works", c.works.Len(),
			"authors", c.authors.Len(),
		)

		stats := model.RoundStats{Round: round}
		err := p.Execute(ctx, &stats)

		summary.Rounds = append(summary.Rounds, stats)
		if c.observer != nil {
			c.observer.RoundFinished(stats)
		}

		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
	}
}

// expandWorks harvests the comments of every scheduled work and schedules
// their authors.
func (c *Crawler) expandWorks(ctx context.Context, stats *model.RoundStats) error {
	works := c.works.Drain()

	for i, work := range works {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Info("downloading work",
			"work", work.String(),
			"progress", fmt.Sprintf("%d/%d", i+1, len(works)),
		)

		comments, err := c.pages.CollectAllComments(ctx, work)
		if fetch.IsNotFound(err) {
			c.logger.Warn("work not found, skipping", "work", work.String())
			stats.WorksMissing++
			continue
		}
		if err != nil {
			return err
		}

		result := model.WorkResult{Owner: work.Owner, Slug: work.Slug, Comments: comments}
		if err := c.saver.Save(model.KindWork, itch.WorkKey(work), result); err != nil {
			return fmt.Errorf("save work %s: %w", work, err)
		}

		stats.WorksProcessed++
		stats.CommentsHarvested += len(comments)

		for _, comment := range comments {
			if comment.AuthorID == "" {
				continue
			}
			author := model.AuthorRef{ID: comment.AuthorID}
			if c.visitedAuthors.Add(author) {
				c.authors.Push(author)
				stats.NewAuthors++
			}
		}

		c.logger.Debug("work harvested",
			"work", work.String(),
			"comments", len(comments),
		)
	}

	return nil
}

// expandAuthors reads the recent activity of every scheduled author and
// schedules the game threads found there for the next round.
func (c *Crawler) expandAuthors(ctx context.Context, stats *model.RoundStats) error {
	authors := c.authors.Drain()

	for i, author := range authors {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Info("downloading author",
			"author", author.ID,
			"progress", fmt.Sprintf("%d/%d", i+1, len(authors)),
		)

		entries, err := c.profiles.ReadActivity(ctx, author)
		if fetch.IsNotFound(err) {
			c.logger.Warn("author not found, skipping", "author", author.ID)
			stats.AuthorsMissing++
			continue
		}
		if err != nil {
			return err
		}

		result := model.AuthorResult{Author: author.ID, Activity: entries}
		if err := c.saver.Save(model.KindAuthor, author.ID, result); err != nil {
			return fmt.Errorf("save author %s: %w", author, err)
		}

		stats.AuthorsProcessed++

		for _, entry := range entries {
			stats.CommentsHarvested += len(entry.Comments)

			// Only game threads end in /comments; other threads are skipped.
			if !itch.IsWorkCommentsURL(entry.SourceURL) {
				continue
			}
			work, ok := itch.ParseWorkRef(entry.SourceURL)
			if !ok {
				continue
			}
			if c.visitedWorks.Add(work) {
				c.works.Push(work)
				stats.NewWorks++
			}
		}
	}

	return nil
}
