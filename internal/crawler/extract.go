package crawler

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/mati7337/itchy-graphs/internal/itch"
	"github.com/mati7337/itchy-graphs/internal/model"
)

// Class names and selectors of the community markup.
const (
	classCommunityPost = "community_post"
	classDeleted       = "is_deleted"
	classSuspended     = "is_suspended"
	classTopicPostRow  = "topic_post_row"

	selectorPostList    = ".community_post_list_widget"
	selectorPageLabel   = ".page_label"
	selectorRecentPosts = ".recent_posts"
	selectorTopicTitle  = ".topic_title"
	selectorAuthor      = ".post_author"
	selectorDate        = ".post_date"
	selectorBody        = ".post_body"
	selectorUpvotes     = ".upvotes"
	selectorDownvotes   = ".downvotes"

	attrPayload = "data-post"
)

// pageLabelPattern matches a page label such as "41 to 80 of 1234" once
// thousands separators are removed.
var pageLabelPattern = regexp.MustCompile(`(\d+) to (\d+) of (\d+)`)

// postElement is what the markup offers for one candidate comment.
// It holds plain values only so buildComment can be tested without a DOM.
type postElement struct {
	Classes []string

	Payload    string
	HasPayload bool

	AuthorHref string
	AuthorName string
	HasAuthor  bool

	DateTitle string
	HasDate   bool

	Body    string
	HasBody bool

	// Upvotes and Downvotes hold the raw vote text; nil when the element
	// is absent.
	Upvotes   *string
	Downvotes *string
}

// hasClass reports whether the element carries class.
func (p postElement) hasClass(class string) bool {
	for _, c := range p.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// scanPost reads a community post element into a postElement. It never
// fails; missing parts are recorded through the Has* flags.
func scanPost(sel *goquery.Selection) postElement {
	var el postElement

	if class, ok := sel.Attr("class"); ok {
		el.Classes = strings.Fields(class)
	}

	el.Payload, el.HasPayload = sel.Attr(attrPayload)

	if link := sel.Find(selectorAuthor).First().Find("a").First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok {
			el.AuthorHref = href
			el.AuthorName = link.Text()
			el.HasAuthor = true
		}
	}

	if date := sel.Find(selectorDate).First(); date.Length() > 0 {
		el.DateTitle, el.HasDate = date.Attr("title")
	}

	if body := sel.Find(selectorBody).First(); body.Length() > 0 {
		el.Body = body.Text()
		el.HasBody = true
	}

	el.Upvotes = optionalText(sel.Find(selectorUpvotes).First())
	el.Downvotes = optionalText(sel.Find(selectorDownvotes).First())

	return el
}

func optionalText(sel *goquery.Selection) *string {
	if sel.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(sel.Text())
	return &text
}

// buildComment turns a scanned element into a Comment. The payload is
// decoded first, then the author, date, body and votes read from the
// markup are laid over it.
func buildComment(el postElement) (model.Comment, error) {
	if !el.HasPayload {
		return model.Comment{}, markupError(attrPayload, "attribute missing")
	}
	if !el.HasAuthor {
		return model.Comment{}, markupError(selectorAuthor+" a[href]", "element missing")
	}
	if !el.HasDate {
		return model.Comment{}, markupError(selectorDate+"[title]", "element missing")
	}
	if !el.HasBody {
		return model.Comment{}, markupError(selectorBody, "element missing")
	}

	payload, err := decodePayload(el.Payload)
	if err != nil {
		return model.Comment{}, err
	}

	comment := model.Comment{
		ID:         payloadID(payload["id"]),
		AuthorURL:  el.AuthorHref,
		AuthorID:   itch.AuthorIDFromURL(el.AuthorHref),
		AuthorName: el.AuthorName,
		PostedAt:   el.DateTitle,
		Body:       el.Body,
	}

	if el.Upvotes != nil {
		n, err := parseVotes(*el.Upvotes)
		if err != nil {
			return model.Comment{}, &MarkupError{Element: selectorUpvotes, Detail: "bad vote count", Err: err}
		}
		comment.Upvotes = &n
	}
	if el.Downvotes != nil {
		n, err := parseVotes(*el.Downvotes)
		if err != nil {
			return model.Comment{}, &MarkupError{Element: selectorDownvotes, Detail: "bad vote count", Err: err}
		}
		comment.Downvotes = &n
	}

	for key, value := range payload {
		if model.IsCommentField(key) {
			continue
		}
		if comment.Extra == nil {
			comment.Extra = make(map[string]any)
		}
		comment.Extra[key] = value
	}

	return comment, nil
}

func decodePayload(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, &MarkupError{Element: attrPayload, Detail: "invalid JSON", Err: err}
	}
	if payload == nil {
		return nil, markupError(attrPayload, "not a JSON object")
	}
	return payload, nil
}

// payloadID renders the payload id as a string. Numeric ids keep their
// exact digits.
func payloadID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// parseVotes parses a vote count rendered as "(+N)" or "(-N)" and returns N.
func parseVotes(text string) (int, error) {
	if len(text) < 4 || text[0] != '(' || (text[1] != '+' && text[1] != '-') || text[len(text)-1] != ')' {
		return 0, fmt.Errorf("vote count %q is not of the form (+N) or (-N)", text)
	}

	digits := text[2 : len(text)-1]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("vote count %q is not of the form (+N) or (-N)", text)
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("vote count %q: %w", text, err)
	}
	return n, nil
}

// ExtractCommentList returns the comments held by the direct children of a
// post list fragment. Only children with the community post class are read;
// deleted and suspended posts are skipped without error.
func ExtractCommentList(fragment *goquery.Selection) ([]model.Comment, error) {
	if fragment == nil || fragment.Length() == 0 {
		return nil, markupError(selectorPostList, "element missing")
	}

	comments := make([]model.Comment, 0)
	var firstErr error

	fragment.First().Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		el := scanPost(child)
		if !el.hasClass(classCommunityPost) {
			return true
		}
		if el.hasClass(classDeleted) || el.hasClass(classSuspended) {
			return true
		}

		comment, err := buildComment(el)
		if err != nil {
			firstErr = err
			return false
		}
		comments = append(comments, comment)
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return comments, nil
}

// ExtractPageMeta reads the pagination label of a comments page.
// ok is false when the page has no label, which is how the remote marks a
// single page or an out-of-range offset. A label that does not read
// "<from> to <to> of <total>" is a *MarkupError.
func ExtractPageMeta(doc *goquery.Document) (from, to, total int, ok bool, err error) {
	label := doc.Find(selectorPageLabel).First()
	if label.Length() == 0 {
		return 0, 0, 0, false, nil
	}

	text := strings.ReplaceAll(label.Text(), ",", "")
	match := pageLabelPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, 0, false, markupError(selectorPageLabel, fmt.Sprintf("label %q does not match \"N to M of T\"", strings.TrimSpace(text)))
	}

	values := make([]int, 3)
	for i := range values {
		n, convErr := strconv.Atoi(match[i+1])
		if convErr != nil {
			return 0, 0, 0, false, &MarkupError{Element: selectorPageLabel, Detail: "number out of range", Err: convErr}
		}
		values[i] = n
	}

	return values[0], values[1], values[2], true, nil
}

// ParseCommentsPage parses one page of a work's comment thread.
func ParseCommentsPage(src string) (model.Page, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return model.Page{}, err
	}

	comments, err := ExtractCommentList(doc.Find(selectorPostList).First())
	if err != nil {
		return model.Page{}, err
	}

	page := model.Page{Comments: comments}

	from, to, total, ok, err := ExtractPageMeta(doc)
	if err != nil {
		return model.Page{}, err
	}
	if ok {
		page.From, page.To, page.Total = &from, &to, &total
	}

	return page, nil
}

// ParseProfilePage parses the recent posts section of an author profile.
// Each post row yields the thread link and the posts shown in the row.
// A profile without a recent posts section yields no entries.
func ParseProfilePage(src string) ([]model.ActivityEntry, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}

	recent := doc.Find(selectorRecentPosts).First()
	if recent.Length() == 0 {
		return []model.ActivityEntry{}, nil
	}

	entries := make([]model.ActivityEntry, 0)
	var firstErr error

	recent.Children().EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !row.HasClass(classTopicPostRow) {
			return true
		}

		link := row.Find(selectorTopicTitle).First().Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			firstErr = markupError(selectorTopicTitle+" a[href]", "element missing")
			return false
		}

		comments, err := ExtractCommentList(row.Find(selectorPostList).First())
		if err != nil {
			firstErr = err
			return false
		}

		entries = append(entries, model.ActivityEntry{SourceURL: href, Comments: comments})
		return true
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return entries, nil
}

// parseDocument parses HTML with x/net/html and wraps it for selector
// queries.
func parseDocument(src string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}
