package model

// WorkResult is the payload persisted for a processed work.
type WorkResult struct {
	Owner    string    `json:"game_author"`
	Slug     string    `json:"game_name"`
	Comments []Comment `json:"comments"`
}

// Ref returns the identity of the work the result belongs to.
func (r WorkResult) Ref() WorkRef {
	return WorkRef{Owner: r.Owner, Slug: r.Slug}
}

// AuthorResult is the payload persisted for a processed author.
type AuthorResult struct {
	Author   string          `json:"user"`
	Activity []ActivityEntry `json:"comments"`
}
