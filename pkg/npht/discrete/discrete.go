// Package discrete implements the discrete NPHT of a binary 2D shape.
//
// The shape is represented by its boundary graph: vertices are pixel corners
// and edges are the unit pixel sides that separate the shape from the
// background. For every probing direction the graph is filtered by height and
// its sublevel-set persistence is computed with a union-find pass.
package discrete

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hed1ad/gonpht/pkg/diagram"
	"github.com/hed1ad/gonpht/pkg/imaging"
	"github.com/hed1ad/gonpht/pkg/npht"
)

// ErrEmptyMask is returned when the mask has no set pixel.
var ErrEmptyMask = errors.New("empty mask")

// NPHT computes persistence diagrams of the height filtrations of a shape boundary.
type NPHT struct {
	normalize bool
	tolerance float64
}

var _ npht.Transformer = (*NPHT)(nil)

// Option configures an NPHT.
type Option func(*NPHT)

// WithNormalize toggles centering the boundary at its barycenter and scaling
// it into the unit disk.
func WithNormalize(normalize bool) Option {
	return func(t *NPHT) {
		t.normalize = normalize
	}
}

// WithTolerance sets the persistence at or below which finite pairs are dropped.
func WithTolerance(tol float64) Option {
	return func(t *NPHT) {
		t.tolerance = tol
	}
}

// New creates a new NPHT with the given options.
func New(opts ...Option) *NPHT {
	t := &NPHT{
		normalize: true,
		tolerance: 1e-9,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// graph is the boundary 1-complex of a mask.
type graph struct {
	xs, ys []float64
	edges  [][2]int
}

// Transform returns the dimension 0 and 1 diagrams for each of the given
// number of directions.
func (t *NPHT) Transform(ctx context.Context, mask imaging.Mask, directions int) ([]npht.DirectionDiagrams, error) {
	if directions < 1 {
		return nil, fmt.Errorf("%w: %d", npht.ErrInvalidDirections, directions)
	}

	g := boundary(mask)
	if len(g.edges) == 0 {
		return nil, ErrEmptyMask
	}
	if t.normalize {
		g.normalize()
	}

	angles := npht.Angles(directions)
	out := make([]npht.DirectionDiagrams, len(angles))
	heights := make([]float64, len(g.xs))

	for i, theta := range angles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cos, sin := math.Cos(theta), math.Sin(theta)
		for v := range heights {
			heights[v] = g.xs[v]*cos + g.ys[v]*sin
		}

		dim0, dim1 := persistence(heights, g.edges, t.tolerance)
		out[i] = npht.DirectionDiagrams{Angle: theta, Dim0: dim0, Dim1: dim1}
	}

	return out, nil
}

// boundary builds the boundary graph of mask. Vertices use Cartesian
// coordinates with y pointing up.
func boundary(mask imaging.Mask) *graph {
	g := &graph{}
	index := make(map[int]int)
	stride := mask.Width + 1

	vertex := func(cx, cy int) int {
		key := cy*stride + cx
		if v, ok := index[key]; ok {
			return v
		}
		v := len(g.xs)
		index[key] = v
		g.xs = append(g.xs, float64(cx))
		g.ys = append(g.ys, float64(mask.Height-cy))
		return v
	}

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			if !mask.At(x, y-1) {
				g.edges = append(g.edges, [2]int{vertex(x, y), vertex(x+1, y)})
			}
			if !mask.At(x, y+1) {
				g.edges = append(g.edges, [2]int{vertex(x, y+1), vertex(x+1, y+1)})
			}
			if !mask.At(x-1, y) {
				g.edges = append(g.edges, [2]int{vertex(x, y), vertex(x, y+1)})
			}
			if !mask.At(x+1, y) {
				g.edges = append(g.edges, [2]int{vertex(x+1, y), vertex(x+1, y+1)})
			}
		}
	}

	return g
}

func (g *graph) normalize() {
	var cx, cy float64
	for v := range g.xs {
		cx += g.xs[v]
		cy += g.ys[v]
	}
	n := float64(len(g.xs))
	cx, cy = cx/n, cy/n

	var radius float64
	for v := range g.xs {
		g.xs[v] -= cx
		g.ys[v] -= cy
		radius = math.Max(radius, math.Hypot(g.xs[v], g.ys[v]))
	}
	if radius == 0 {
		return
	}
	for v := range g.xs {
		g.xs[v] /= radius
		g.ys[v] /= radius
	}
}

// persistence computes the sublevel-set diagrams of a graph filtered by
// vertex heights; an edge enters at the larger height of its endpoints.
func persistence(heights []float64, edges [][2]int, tol float64) (dim0, dim1 diagram.Diagram) {
	value := func(e [2]int) float64 {
		return math.Max(heights[e[0]], heights[e[1]])
	}
	// older reports whether vertex a was born before b.
	older := func(a, b int) bool {
		if heights[a] != heights[b] {
			return heights[a] < heights[b]
		}
		return a < b
	}

	order := make([]int, len(edges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return value(edges[order[i]]) < value(edges[order[j]])
	})

	parent := make([]int, len(heights))
	for v := range parent {
		parent[v] = v
	}
	find := func(v int) int {
		for parent[v] != v {
			parent[v] = parent[parent[v]]
			v = parent[v]
		}
		return v
	}

	dim0 = diagram.Diagram{}
	dim1 = diagram.Diagram{}
	for _, i := range order {
		e := edges[i]
		h := value(e)
		ru, rv := find(e[0]), find(e[1])
		if ru == rv {
			dim1 = append(dim1, diagram.Point{Birth: h, Death: math.Inf(1)})
			continue
		}
		if older(ru, rv) {
			ru, rv = rv, ru
		}
		// ru is the younger root and dies here.
		if h-heights[ru] > tol {
			dim0 = append(dim0, diagram.Point{Birth: heights[ru], Death: h})
		}
		parent[ru] = rv
	}
	dim0.Sort()

	var essential diagram.Diagram
	for v := range parent {
		if find(v) == v {
			essential = append(essential, diagram.Point{Birth: heights[v], Death: math.Inf(1)})
		}
	}
	essential.Sort()
	dim0 = append(dim0, essential...)
	dim1.Sort()

	return dim0, dim1
}
