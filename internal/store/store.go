// Package store persists per-node crawl results as JSON files.
//
// Works are written to <dir>/works/<key>.json and authors to
// <dir>/authors/<key>.json, where key is made file-name safe with
// itch.SafeKey. Files are rewritten on every save, so a re-run overwrites
// earlier results for the same node.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mati7337/itchy-graphs/internal/itch"
	"github.com/mati7337/itchy-graphs/internal/model"
)

// Directory names under the output directory.
const (
	WorksDir   = "works"
	AuthorsDir = "authors"
)

// ErrUnknownKind is returned for a node kind that has no directory.
var ErrUnknownKind = errors.New("unknown node kind")

// Store writes and reads node results under a root directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir without touching the file system.
// It suits read-only use; Save fails until the node directories exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Open prepares dir for writing, creating the works and authors directories.
func Open(dir string) (*Store, error) {
	for _, sub := range []string{WorksDir, AuthorsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return New(dir), nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a payload of kind and key is written to.
func (s *Store) Path(kind model.NodeKind, key string) (string, error) {
	sub, err := kindDir(kind)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, sub, itch.SafeKey(key)+".json"), nil
}

// Save writes payload as JSON. The file is written to a temporary name
// first and renamed into place.
func (s *Store) Save(kind model.NodeKind, key string, payload any) error {
	path, err := s.Path(kind, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize %s %s: %w", kind, key, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s %s: %w", kind, key, err)
	}
	return nil
}

// LoadWorks reads every saved work result, ordered by file name.
func (s *Store) LoadWorks() ([]model.WorkResult, error) {
	var works []model.WorkResult
	err := s.walk(WorksDir, func(path string, data []byte) error {
		var w model.WorkResult
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		works = append(works, w)
		return nil
	})
	return works, err
}

// LoadAuthors reads every saved author result, ordered by file name.
func (s *Store) LoadAuthors() ([]model.AuthorResult, error) {
	var authors []model.AuthorResult
	err := s.walk(AuthorsDir, func(path string, data []byte) error {
		var a model.AuthorResult
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		authors = append(authors, a)
		return nil
	})
	return authors, err
}

// walk calls fn with the content of every .json file in sub. A missing
// directory is treated as empty.
func (s *Store) walk(sub string, fn func(path string, data []byte) error) error {
	dir := filepath.Join(s.dir, sub)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) //nolint:gosec // path comes from ReadDir of our own directory
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

func kindDir(kind model.NodeKind) (string, error) {
	switch kind {
	case model.KindWork:
		return WorksDir, nil
	case model.KindAuthor:
		return AuthorsDir, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
