package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/mati7337/itchy-graphs/internal/fetch"
	"github.com/mati7337/itchy-graphs/internal/model"
)

// post describes one community post for the markup builders.
type post struct {
	id       int
	author   string
	name     string
	body     string
	classes  string
	upvotes  string
	downvote string
}

func (p post) html() string {
	name := p.name
	if name == "" {
		name = strings.ToUpper(p.author)
	}
	votes := ""
	if p.upvotes != "" {
		votes += fmt.Sprintf(`<span class="upvotes">%s</span>`, p.upvotes)
	}
	if p.downvote != "" {
		votes += fmt.Sprintf(`<span class="downvotes">%s</span>`, p.downvote)
	}
	return fmt.Sprintf(`<div class="community_post %s" data-post='{"id":%d,"user_id":7}'>`+
		`<div class="post_header"><span class="post_author"><a href="https://itch.io/profile/%s">%s</a></span>`+
		`<span class="post_date" title="2024-01-02 03:04:05"><a href="#">1 year ago</a></span>%s</div>`+
		`<div class="post_body"><p>%s</p></div></div>`,
		p.classes, p.id, p.author, name, votes, p.body)
}

func postList(posts ...post) string {
	var b strings.Builder
	b.WriteString(`<div class="community_post_list_widget">`)
	for _, p := range posts {
		b.WriteString(p.html())
	}
	b.WriteString(`</div>`)
	return b.String()
}

// commentsPage renders a comments page. An empty label renders no
// page label element.
func commentsPage(label string, posts ...post) string {
	pager := ""
	if label != "" {
		pager = fmt.Sprintf(`<div class="pager"><span class="page_label">%s</span></div>`, label)
	}
	return `<html><body>` + postList(posts...) + pager + `</body></html>`
}

// topicRow is one row of a profile's recent posts.
type topicRow struct {
	href  string
	posts []post
}

func profilePage(rows ...topicRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="recent_posts"><h2>Recent community posts</h2>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<div class="topic_post_row"><div class="topic_title"><a href="%s">Thread</a></div>%s</div>`,
			r.href, postList(r.posts...))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// postsBy returns n posts by author with consecutive ids starting at first.
func postsBy(author string, first, n int) []post {
	posts := make([]post, n)
	for i := range posts {
		posts[i] = post{id: first + i, author: author, body: fmt.Sprintf("comment %d", first+i)}
	}
	return posts
}

// fakeFetcher serves canned documents keyed by URL plus encoded query.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{docs: make(map[string]string), errs: make(map[string]error)}
}

func requestKey(rawURL string, query url.Values) string {
	if len(query) == 0 {
		return rawURL
	}
	return rawURL + "?" + query.Encode()
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string, query url.Values) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := requestKey(rawURL, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)

	if err, ok := f.errs[key]; ok {
		return "", err
	}
	doc, ok := f.docs[key]
	if !ok {
		return "", &fetch.HTTPError{StatusCode: 404, URL: key}
	}
	return doc, nil
}

func (f *fakeFetcher) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// memorySaver records saved payloads.
type memorySaver struct {
	mu    sync.Mutex
	saved map[model.NodeKind]map[string]any
	err   error
}

func newMemorySaver() *memorySaver {
	return &memorySaver{saved: map[model.NodeKind]map[string]any{
		model.KindWork:   {},
		model.KindAuthor: {},
	}}
}

func (s *memorySaver) Save(kind model.NodeKind, key string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.saved[kind][key] = payload
	return nil
}
