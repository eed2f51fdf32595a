// Package folder discovers samples laid out as one sub-folder per class label.
package folder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	pio "github.com/hed1ad/gonpht/pkg/io"
)

// DefaultIgnore lists file names skipped during discovery.
var DefaultIgnore = []string{"Thumbs.db"}

// Source reads samples from root/<label>/<sample-id>.
type Source struct {
	root   string
	ignore map[string]bool
}

var _ pio.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithIgnore replaces the list of file names to skip.
func WithIgnore(names ...string) Option {
	return func(s *Source) {
		s.ignore = make(map[string]bool, len(names))
		for _, n := range names {
			s.ignore[n] = true
		}
	}
}

// New creates a Source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{root: root}
	WithIgnore(DefaultIgnore...)(s)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Root returns the input directory.
func (s *Source) Root() string {
	return s.root
}

// Discover lists class folders and their files. Entries directly under the
// root that are not directories are ignored, as are sub-directories of a
// class folder.
func (s *Source) Discover(ctx context.Context) (pio.Dataset, error) {
	classes, err := os.ReadDir(s.root)
	if err != nil {
		return pio.Dataset{}, fmt.Errorf("read input folder: %w", err)
	}

	var ds pio.Dataset
	for _, class := range classes {
		if err := ctx.Err(); err != nil {
			return pio.Dataset{}, err
		}
		if !class.IsDir() {
			continue
		}

		label := class.Name()
		dir := filepath.Join(s.root, label)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return pio.Dataset{}, fmt.Errorf("read class folder %s: %w", label, err)
		}

		ds.Labels = append(ds.Labels, label)
		for _, e := range entries {
			if e.IsDir() || s.ignore[e.Name()] {
				continue
			}
			ds.Samples = append(ds.Samples, pio.Sample{
				Path:  filepath.Join(dir, e.Name()),
				Label: label,
				ID:    e.Name(),
			})
		}
	}

	// os.ReadDir sorts by name; keep the order explicit for callers.
	sort.Strings(ds.Labels)
	sort.SliceStable(ds.Samples, func(i, j int) bool {
		if ds.Samples[i].Label != ds.Samples[j].Label {
			return ds.Samples[i].Label < ds.Samples[j].Label
		}
		return ds.Samples[i].ID < ds.Samples[j].ID
	})

	return ds, nil
}
