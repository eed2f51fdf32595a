// Package npht defines the normalized persistent homology transform contract.
package npht

import (
	"context"
	"errors"
	"math"

	"github.com/hed1ad/gonpht/pkg/diagram"
	"github.com/hed1ad/gonpht/pkg/imaging"
)

// ErrInvalidDirections is returned for a direction count below 1.
var ErrInvalidDirections = errors.New("number of directions must be positive")

// Transformer computes the NPHT of a binary shape.
type Transformer interface {
	// Transform returns one entry per probing direction, in the order of Angles(directions).
	Transform(ctx context.Context, mask imaging.Mask, directions int) ([]DirectionDiagrams, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(ctx context.Context, mask imaging.Mask, directions int) ([]DirectionDiagrams, error)

// Transform calls f.
func (f TransformerFunc) Transform(ctx context.Context, mask imaging.Mask, directions int) ([]DirectionDiagrams, error) {
	return f(ctx, mask, directions)
}

// DirectionDiagrams holds the diagrams of one probing direction.
type DirectionDiagrams struct {
	// Angle is the direction in radians, counter-clockwise from the positive x axis.
	Angle float64
	// Dim0 is the dimension-0 (connected components) diagram.
	Dim0 diagram.Diagram
	// Dim1 is the dimension-1 (cycles) diagram.
	Dim1 diagram.Diagram
}

// Angles returns n directions equally spaced on the unit circle, starting at 0.
func Angles(n int) []float64 {
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return angles
}
