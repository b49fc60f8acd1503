package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/mati7337/itchy-graphs/internal/itch"
	"github.com/mati7337/itchy-graphs/internal/model"
)

// Fetcher retrieves the decoded body of a document. *fetch.Fetcher
// implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, query url.Values) (string, error)
}

// Paginator reassembles the full comment history of a work from the
// offset-addressed comments endpoint. Each request returns a window of up
// to 40 comments following the 1-based offset given in "after".
type Paginator struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewPaginator creates a Paginator. A nil logger falls back to
// slog.Default().
func NewPaginator(fetcher Fetcher, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paginator{fetcher: fetcher, logger: logger}
}

// CollectAllComments fetches every page of a work's comment thread and
// returns the comments in arrival order.
//
// The first request uses after=0. A page without a page label holds all
// remaining comments and ends the walk at once. Otherwise the offset
// advances by the size of the page window and the walk continues until
// the collected count reaches the label's total.
//
// A page without a label is ambiguous: it is either the only page, or the
// requested offset skipped past low-numbered deleted comments. Both cases
// return immediately, so the result may hold fewer comments than the total
// the site displays. Deleted comments are never backfilled either.
//
// Fetch errors are returned unchanged in the chain, so callers can match a
// *fetch.HTTPError with errors.As.
func (p *Paginator) CollectAllComments(ctx context.Context, work model.WorkRef) ([]model.Comment, error) {
	endpoint := itch.WorkCommentsURL(work)

	collected := make([]model.Comment, 0)
	total := 1 // unknown until the first label is read
	after := 0

	for len(collected) < total {
		src, err := p.fetcher.Fetch(ctx, endpoint, url.Values{"after": {strconv.Itoa(after)}})
		if err != nil {
			return nil, fmt.Errorf("fetch comments of %s after=%d: %w", work, after, err)
		}

		page, err := ParseCommentsPage(src)
		if err != nil {
			return nil, fmt.Errorf("parse comments of %s after=%d: %w", work, after, err)
		}

		if !page.HasMeta() {
			p.logger.Debug("comment page without label",
				"work", work.String(),
				"after", after,
				"comments", len(page.Comments),
			)
			return append(collected, page.Comments...), nil
		}

		from, to := *page.From, *page.To
		if to < from {
			return nil, fmt.Errorf("parse comments of %s after=%d: %w", work, after,
				markupError(selectorPageLabel, fmt.Sprintf("window %d to %d does not advance", from, to)))
		}

		collected = append(collected, page.Comments...)
		after += to - from + 1
		total = *page.Total

		p.logger.Debug("comment page",
			"work", work.String(),
			"from", from,
			"to", to,
			"total", total,
		)
	}

	return collected, nil
}

// ProfileReader reads the recent activity listing of an author. The
// listing is a single page; there is no pagination.
type ProfileReader struct {
	fetcher Fetcher
}

// NewProfileReader creates a ProfileReader.
func NewProfileReader(fetcher Fetcher) *ProfileReader {
	return &ProfileReader{fetcher: fetcher}
}

// ReadActivity fetches and parses the profile page of author.
func (r *ProfileReader) ReadActivity(ctx context.Context, author model.AuthorRef) ([]model.ActivityEntry, error) {
	src, err := r.fetcher.Fetch(ctx, itch.CanonicalAuthorURL(author.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch profile of %s: %w", author, err)
	}

	entries, err := ParseProfilePage(src)
	if err != nil {
		return nil, fmt.Errorf("parse profile of %s: %w", author, err)
	}
	return entries, nil
}
