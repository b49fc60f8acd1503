package itch

import (
	"errors"
	"regexp"
	"strings"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// Storefront constants.
const (
	// Domain is the storefront domain every work subdomain lives under.
	Domain = "itch.io"

	// CommentsSuffix is the trailing path segment of a work's comment thread.
	CommentsSuffix = "/comments"

	// profilePrefix is the base of author profile URLs.
	profilePrefix = "https://" + Domain + "/profile/"
)

// workPattern matches "://<owner>.itch.io/<slug>" anywhere in a URL.
// The owner may not contain dots or slashes, which keeps the bare storefront
// host (https://itch.io/...) from matching.
var workPattern = regexp.MustCompile(`://([^./]*)\.itch\.io/([^/?#]*)`)

// ErrInvalidWorkURL is returned by NormalizeWorkURL for input that does not
// name a work.
var ErrInvalidWorkURL = errors.New("invalid work url: expected https://<owner>.itch.io/<slug>")

// ParseWorkRef extracts the owner and slug of a work from url.
// It returns false when url does not have the work shape; callers treat
// that as "not a work" rather than as an error.
func ParseWorkRef(url string) (model.WorkRef, bool) {
	match := workPattern.FindStringSubmatch(url)
	if match == nil {
		return model.WorkRef{}, false
	}

	owner, slug := match[1], match[2]
	if owner == "" || slug == "" {
		return model.WorkRef{}, false
	}

	return model.WorkRef{Owner: owner, Slug: slug}, true
}

// CanonicalWorkURL returns the page URL of a work.
func CanonicalWorkURL(ref model.WorkRef) string {
	return "https://" + ref.Owner + "." + Domain + "/" + ref.Slug
}

// WorkCommentsURL returns the comments endpoint of a work.
func WorkCommentsURL(ref model.WorkRef) string {
	return CanonicalWorkURL(ref) + CommentsSuffix
}

// CanonicalAuthorURL returns the profile URL of an author.
func CanonicalAuthorURL(id string) string {
	return profilePrefix + id
}

// AuthorIDFromURL returns the trailing path segment of a profile URL.
// A URL ending in "/" has an empty trailing segment and yields "", which
// callers treat as an anonymous author.
func AuthorIDFromURL(url string) string {
	if idx := strings.LastIndex(url, "/"); idx != -1 {
		return url[idx+1:]
	}
	return url
}

// IsWorkCommentsURL reports whether url looks like a work comment thread.
// Only the suffix is checked; ParseWorkRef still has to succeed before the
// URL is treated as a work.
func IsWorkCommentsURL(url string) bool {
	return strings.HasSuffix(url, CommentsSuffix)
}

// NormalizeWorkURL turns user input into a work reference.
//
// It handles common input variations:
//   - surrounding whitespace
//   - a missing scheme ("chasefox.itch.io/game")
//   - trailing paths such as "/comments" or "/devlog/1"
func NormalizeWorkURL(input string) (model.WorkRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.WorkRef{}, ErrInvalidWorkURL
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	ref, ok := ParseWorkRef(input)
	if !ok {
		return model.WorkRef{}, ErrInvalidWorkURL
	}
	return ref, nil
}

// WorkKey is the persistence key of a work before escaping.
func WorkKey(ref model.WorkRef) string {
	return ref.Owner + "_" + ref.Slug
}

// SafeKey makes a node key usable as a file name: path separators are
// removed and dots are replaced with "_dot_".
func SafeKey(raw string) string {
	safe := strings.ReplaceAll(raw, "/", "")
	safe = strings.ReplaceAll(safe, `\`, "")
	return strings.ReplaceAll(safe, ".", "_dot_")
}
