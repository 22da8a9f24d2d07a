package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creachadair/atomicfile"

	"github.com/nhle/mailscore/internal/model"
)

// collectionSuffix is appended to the collection name to form its file name.
const collectionSuffix = "_raw_emails.json"

// JSONStore keeps each collection in <dir>/<name>_raw_emails.json.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a store rooted at dir, creating it if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &JSONStore{dir: dir}, nil
}

// Path returns the file backing the named collection.
func (s *JSONStore) Path(name string) string {
	return filepath.Join(s.dir, name+collectionSuffix)
}

// Load reads the named collection.
func (s *JSONStore) Load(_ context.Context, name string) (*model.Collection, error) {
	if err := validName(name); err != nil {
		return nil, fmt.Errorf("loading %q: %w", name, err)
	}
	return ReadCollectionFile(s.Path(name))
}

// ReadCollectionFile decodes a collection file. A missing file yields nil.
func ReadCollectionFile(path string) (*model.Collection, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", path, err)
	}

	var c model.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing collection %s: %w", path, err)
	}
	return &c, nil
}

// Save writes the collection through a temporary file and renames it into
// place.
func (s *JSONStore) Save(_ context.Context, name string, c *model.Collection) error {
	if err := validName(name); err != nil {
		return fmt.Errorf("saving %q: %w", name, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", name, err)
	}
	if err := atomicfile.WriteData(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("writing collection %s: %w", name, err)
	}
	return nil
}

// List returns the collections present in the directory.
func (s *JSONStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), collectionSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), collectionSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (s *JSONStore) Close() error {
	return nil
}
