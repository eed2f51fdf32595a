// Package extract turns a shape mask into view-keyed persistence diagrams.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/hed1ad/gonpht/pkg/diagram"
	"github.com/hed1ad/gonpht/pkg/imaging"
	"github.com/hed1ad/gonpht/pkg/npht"
)

// ErrDegenerate is returned when a direction yields an empty dimension-0 diagram.
var ErrDegenerate = errors.New("degenerate diagram detected")

// Extractor adapts a Transformer to the view-key layout of a provider.
type Extractor struct {
	transformer npht.Transformer
}

// New creates an Extractor backed by t.
func New(t npht.Transformer) *Extractor {
	return &Extractor{transformer: t}
}

// Extract returns exactly two diagrams per direction, keyed dim_0_dir_i and
// dim_1_dir_i for i = 1..directions, or an error and no diagrams.
func (e *Extractor) Extract(ctx context.Context, mask imaging.Mask, directions int) (map[string]diagram.Diagram, error) {
	if directions < 1 {
		return nil, fmt.Errorf("%w: %d", npht.ErrInvalidDirections, directions)
	}

	out, err := e.transformer.Transform(ctx, mask, directions)
	if err != nil {
		return nil, err
	}
	if len(out) != directions {
		return nil, fmt.Errorf("transform returned %d directions, want %d", len(out), directions)
	}

	dgms := make(map[string]diagram.Diagram, diagram.Dims*directions)
	for i, d := range out {
		dir := i + 1
		if len(d.Dim0) == 0 {
			return nil, fmt.Errorf("direction %d: %w", dir, ErrDegenerate)
		}
		dgms[diagram.ViewKey(0, dir)] = d.Dim0
		dgms[diagram.ViewKey(1, dir)] = d.Dim1
	}

	return dgms, nil
}
