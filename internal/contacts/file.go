package contacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/creachadair/atomicfile"
)

// fileFormat is the persisted directory: sorted lists and a timestamp.
type fileFormat struct {
	Emails        []string  `json:"emails"`
	Names         []string  `json:"names"`
	FirstNames    []string  `json:"first_names"`
	LastNames     []string  `json:"last_names"`
	Organizations []string  `json:"organizations"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Load reads a directory file. A missing file is not an error: it returns
// a nil directory, which disables contact matching.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading contacts %s: %w", path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing contacts %s: %w", path, err)
	}

	return &Directory{
		Emails:        NewSet(ff.Emails...),
		Names:         NewSet(ff.Names...),
		FirstNames:    NewSet(ff.FirstNames...),
		LastNames:     NewSet(ff.LastNames...),
		Organizations: NewSet(ff.Organizations...),
		LastUpdated:   ff.LastUpdated,
	}, nil
}

// Save replaces the directory file atomically.
func Save(path string, dir *Directory) error {
	ff := fileFormat{
		Emails:        dir.Emails.Sorted(),
		Names:         dir.Names.Sorted(),
		FirstNames:    dir.FirstNames.Sorted(),
		LastNames:     dir.LastNames.Sorted(),
		Organizations: dir.Organizations.Sorted(),
		LastUpdated:   dir.LastUpdated,
	}

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding contacts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating contacts directory: %w", err)
	}
	if err := atomicfile.WriteData(path, data, 0o600); err != nil {
		return fmt.Errorf("writing contacts %s: %w", path, err)
	}
	return nil
}
