package itch

import (
	"errors"
	"testing"

	"github.com/mati7337/itchy-graphs/internal/model"
)

// TestParseWorkRef tests work URL parsing.
func TestParseWorkRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		want   model.WorkRef
		wantOK bool
	}{
		{
			name:   "work page",
			url:    "https://chasefox.itch.io/carrot-the-first-seed",
			want:   model.WorkRef{Owner: "chasefox", Slug: "carrot-the-first-seed"},
			wantOK: true,
		},
		{
			name:   "work comments thread",
			url:    "https://rewindgames.itch.io/tanuki-sunset/comments",
			want:   model.WorkRef{Owner: "rewindgames", Slug: "tanuki-sunset"},
			wantOK: true,
		},
		{
			name:   "query string is not part of the slug",
			url:    "https://rewindgames.itch.io/tanuki-sunset?after=40",
			want:   model.WorkRef{Owner: "rewindgames", Slug: "tanuki-sunset"},
			wantOK: true,
		},
		{
			name:   "profile url is not a work",
			url:    "https://itch.io/profile/abc",
			wantOK: false,
		},
		{
			name:   "community thread is not a work",
			url:    "https://itch.io/t/12345/some-topic",
			wantOK: false,
		},
		{
			name:   "subdomain without slug",
			url:    "https://chasefox.itch.io/",
			wantOK: false,
		},
		{
			name:   "other domain",
			url:    "https://example.com/game",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseWorkRef(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ParseWorkRef(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseWorkRef(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

// TestCanonicalURLs tests the URL formatters.
func TestCanonicalURLs(t *testing.T) {
	t.Parallel()

	ref := model.WorkRef{Owner: "chasefox", Slug: "carrot-the-first-seed"}

	if got := CanonicalWorkURL(ref); got != "https://chasefox.itch.io/carrot-the-first-seed" {
		t.Errorf("CanonicalWorkURL() = %q", got)
	}
	if got := WorkCommentsURL(ref); got != "https://chasefox.itch.io/carrot-the-first-seed/comments" {
		t.Errorf("WorkCommentsURL() = %q", got)
	}
	if got := CanonicalAuthorURL("abc"); got != "https://itch.io/profile/abc" {
		t.Errorf("CanonicalAuthorURL() = %q", got)
	}

	t.Run("canonical url round trips", func(t *testing.T) {
		t.Parallel()

		back, ok := ParseWorkRef(CanonicalWorkURL(ref))
		if !ok || back != ref {
			t.Errorf("round trip gave %+v, %v", back, ok)
		}
	})
}

// TestAuthorIDFromURL tests author id extraction.
func TestAuthorIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://itch.io/profile/abc", want: "abc"},
		{url: "abc", want: "abc"},
		{url: "https://itch.io/profile/", want: ""},
		{url: "https://itch.io/profile/abc/", want: ""},
		{url: "", want: ""},
	}

	for _, tt := range tests {
		if got := AuthorIDFromURL(tt.url); got != tt.want {
			t.Errorf("AuthorIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

// TestIsWorkCommentsURL tests the work thread heuristic.
func TestIsWorkCommentsURL(t *testing.T) {
	t.Parallel()

	if !IsWorkCommentsURL("https://a.itch.io/b/comments") {
		t.Error("expected comments url to match")
	}
	if IsWorkCommentsURL("https://itch.io/t/1/topic") {
		t.Error("expected forum topic not to match")
	}
}

// TestNormalizeWorkURL tests seed normalization.
func TestNormalizeWorkURL(t *testing.T) {
	t.Parallel()

	t.Run("adds missing scheme", func(t *testing.T) {
		t.Parallel()

		ref, err := NormalizeWorkURL("  chasefox.itch.io/carrot-the-first-seed ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.Owner != "chasefox" || ref.Slug != "carrot-the-first-seed" {
			t.Errorf("got %+v", ref)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		if _, err := NormalizeWorkURL(""); !errors.Is(err, ErrInvalidWorkURL) {
			t.Errorf("expected ErrInvalidWorkURL, got %v", err)
		}
	})

	t.Run("rejects profile url", func(t *testing.T) {
		t.Parallel()

		if _, err := NormalizeWorkURL("https://itch.io/profile/abc"); !errors.Is(err, ErrInvalidWorkURL) {
			t.Errorf("expected ErrInvalidWorkURL, got %v", err)
		}
	})
}

// TestSafeKey tests filesystem-safe key derivation.
func TestSafeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "chasefox_carrot-the-first-seed", want: "chasefox_carrot-the-first-seed"},
		{raw: "some.user", want: "some_dot_user"},
		{raw: `a/b\c`, want: "abc"},
		{raw: "../etc", want: "_dot__dot_etc"},
	}

	for _, tt := range tests {
		if got := SafeKey(tt.raw); got != tt.want {
			t.Errorf("SafeKey(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	if got := WorkKey(model.WorkRef{Owner: "o", Slug: "s"}); got != "o_s" {
		t.Errorf("WorkKey() = %q", got)
	}
}
