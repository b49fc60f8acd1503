package model

import (
	"bytes"
	"encoding/json"
)

// Comment is one normalized community post.
//
// Comments are produced by the extractor and never mutated afterwards.
// Upvotes and Downvotes are nil when the page carries no vote element;
// they are never zero-filled.
type Comment struct {
	// ID is the post id from the embedded payload.
	ID string `json:"id"`

	// AuthorID is the trailing path segment of the author profile link.
	AuthorID string `json:"post_author_id"`

	// AuthorName is the display name shown in the author link.
	AuthorName string `json:"post_author"`

	// AuthorURL is the href of the author link.
	AuthorURL string `json:"post_author_url"`

	// PostedAt is the post timestamp as rendered in the date title attribute.
	PostedAt string `json:"post_date"`

	// Body is the text content of the post body.
	Body string `json:"body"`

	// Upvotes is the parsed "(+N)" vote count, if present.
	Upvotes *int `json:"upvotes,omitempty"`

	// Downvotes is the parsed "(-N)" vote count, if present.
	Downvotes *int `json:"downvotes,omitempty"`

	// Extra holds payload fields that have no dedicated field above. They
	// are written at the top level of the JSON object next to the named
	// fields.
	Extra map[string]any `json:"-"`
}

// commentFields are the JSON keys owned by the named Comment fields.
var commentFields = map[string]bool{
	"id":              true,
	"post_author_id":  true,
	"post_author":     true,
	"post_author_url": true,
	"post_date":       true,
	"body":            true,
	"upvotes":         true,
	"downvotes":       true,
}

// IsCommentField reports whether key is the JSON name of a named Comment
// field. Such keys never appear in Extra.
func IsCommentField(key string) bool {
	return commentFields[key]
}

type commentJSON Comment

// MarshalJSON writes the named fields and the Extra payload keys as one
// flat object. Named fields win over an Extra key of the same name.
func (c Comment) MarshalJSON() ([]byte, error) {
	named, err := json.Marshal(commentJSON(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return named, nil
	}

	fields := make(map[string]json.RawMessage, len(commentFields)+len(c.Extra))
	if err := json.Unmarshal(named, &fields); err != nil {
		return nil, err
	}
	for key, value := range c.Extra {
		if commentFields[key] {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads a flat comment object. Keys without a named field
// are collected into Extra, with numbers kept as json.Number.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var named commentJSON
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, raw := range fields {
		if commentFields[key] {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if named.Extra == nil {
			named.Extra = make(map[string]any)
		}
		named.Extra[key] = value
	}

	*c = Comment(named)
	return nil
}

// Page is one window of a work's comment history.
//
// From, To and Total are either all set or all nil. They are nil when the
// remote decides the result fits on a single page or when the requested
// offset is out of range; that absence ends pagination.
type Page struct {
	Comments []Comment `json:"comments"`
	From     *int      `json:"from,omitempty"`
	To       *int      `json:"to,omitempty"`
	Total    *int      `json:"total,omitempty"`
}

// HasMeta reports whether the page carries pagination metadata.
func (p Page) HasMeta() bool {
	return p.From != nil && p.To != nil && p.Total != nil
}

// ActivityEntry is one row of an author's recent posts listing: the posts
// the author made in a thread, plus the URL of that thread.
type ActivityEntry struct {
	// SourceURL is the link to the originating thread. For game comments it
	// ends with "/comments".
	SourceURL string `json:"comments_url"`

	// Comments are the posts shown in the row.
	Comments []Comment `json:"posts"`
}
