// Package provider assembles persistence diagram views with run metadata
// into a single container and persists it.
package provider

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hed1ad/gonpht/pkg/diagram"
)

var (
	// ErrUnknownFormat is returned for an unsupported container format.
	ErrUnknownFormat = errors.New("unknown provider format")
	// ErrMissingView is returned when a view implied by the metadata is absent.
	ErrMissingView = errors.New("missing view")
)

// Format is a container encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatGob  Format = "gob"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatGob, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks a format from the file extension; gob is the default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatGob
	}
}

// Meta describes the run that produced a provider.
type Meta struct {
	NumberOfDirections int       `json:"number_of_directions" yaml:"number_of_directions"`
	RunID              string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	CreatedAt          time.Time `json:"created_at" yaml:"created_at"`
	Samples            int       `json:"samples" yaml:"samples"`
	Failures           int       `json:"failures" yaml:"failures"`
}

// NewMeta returns metadata for a new run with a fresh run ID.
func NewMeta(directions int) Meta {
	return Meta{
		NumberOfDirections: directions,
		RunID:              uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
	}
}

// Provider is the output container: views keyed by view-key plus metadata.
type Provider struct {
	Views Views `json:"views" yaml:"views"`
	Meta  Meta  `json:"meta" yaml:"meta"`
}

// New creates a provider.
func New(views Views, meta Meta) *Provider {
	return &Provider{Views: views, Meta: meta}
}

// Validate checks that every view implied by the metadata exists.
func (p *Provider) Validate() error {
	if p.Meta.NumberOfDirections < 1 {
		return fmt.Errorf("number_of_directions must be positive, got %d", p.Meta.NumberOfDirections)
	}
	for _, key := range diagram.ViewKeys(p.Meta.NumberOfDirections) {
		if _, ok := p.Views[key]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingView, key)
		}
	}
	return nil
}

// ViewSummary reports the size of one view.
type ViewSummary struct {
	Key     string
	Labels  int
	Samples int
}

// Summary returns one entry per view, in view-key order.
func (p *Provider) Summary() []ViewSummary {
	keys := make([]string, 0, len(p.Views))
	for key := range p.Views {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, ri, erri := diagram.ParseViewKey(keys[i])
		dj, rj, errj := diagram.ParseViewKey(keys[j])
		if erri != nil || errj != nil {
			if (erri == nil) != (errj == nil) {
				return erri == nil
			}
			return keys[i] < keys[j]
		}
		if ri != rj {
			return ri < rj
		}
		return di < dj
	})

	out := make([]ViewSummary, 0, len(keys))
	for _, key := range keys {
		view := p.Views[key]
		out = append(out, ViewSummary{Key: key, Labels: len(view), Samples: view.Count()})
	}
	return out
}

// Write persists the provider to path in a single atomic replace: the data is
// written to a temporary file in the destination directory, synced, then
// renamed over path.
func (p *Provider) Write(path string, format Format) (err error) {
	if format == FormatAuto || format == "" {
		format = FormatFromPath(path)
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gonpht-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = p.encode(bw, format); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (p *Provider) encode(w io.Writer, format Format) error {
	switch format {
	case FormatGob:
		return gob.NewEncoder(w).Encode(p)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Read loads a provider written by Write.
func Read(path string, format Format) (*Provider, error) {
	if format == FormatAuto || format == "" {
		format = FormatFromPath(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p Provider
	r := bufio.NewReader(f)
	switch format {
	case FormatGob:
		err = gob.NewDecoder(r).Decode(&p)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&p)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return &p, nil
}
