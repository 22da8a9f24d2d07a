package store

import (
	"context"
	"errors"
	"strings"

	"github.com/nhle/mailscore/internal/model"
)

// ErrInvalidName is returned for collection names that cannot be stored.
var ErrInvalidName = errors.New("invalid collection name")

// CollectionStore persists one message collection per mail folder.
// Implementations replace a collection as a whole; readers never observe a
// partially written collection.
type CollectionStore interface {
	// Load returns the named collection, or nil and no error when it has
	// never been saved.
	Load(ctx context.Context, name string) (*model.Collection, error)

	// Save replaces the named collection.
	Save(ctx context.Context, name string, c *model.Collection) error

	// List returns the names of all saved collections, sorted.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// CollectionName maps a mail folder to its collection name. Folder names
// are case-folded so INBOX and inbox share a collection; path separators
// become underscores.
func CollectionName(folder string) string {
	name := strings.ToLower(strings.TrimSpace(folder))
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(name)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
