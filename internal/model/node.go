package model

// WorkRef identifies a work (a game page that accepts comments).
// The canonical URL is derived from Owner and Slug by the itch package;
// it is never stored as the identity.
type WorkRef struct {
	// Owner is the storefront subdomain of the work ("chasefox" in
	// chasefox.itch.io).
	Owner string `json:"owner"`

	// Slug is the first path segment of the work page.
	Slug string `json:"slug"`
}

// String returns "owner/slug".
func (w WorkRef) String() string {
	return w.Owner + "/" + w.Slug
}

// AuthorRef identifies an author by the opaque id taken from a profile URL.
type AuthorRef struct {
	ID string `json:"id"`
}

// String returns the author id.
func (a AuthorRef) String() string {
	return a.ID
}

// NodeKind names the two node types of the crawl graph.
type NodeKind string

const (
	// KindWork is a work node.
	KindWork NodeKind = "work"

	// KindAuthor is an author node.
	KindAuthor NodeKind = "author"
)
