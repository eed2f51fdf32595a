// Package diagram provides persistence diagram types and view-key naming.
package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Dims is the number of homology dimensions reported per direction.
const Dims = 2

// ErrInvalidViewKey is returned when a string is not of the form dim_{d}_dir_{i}.
var ErrInvalidViewKey = errors.New("invalid view key")

// Point is a single (birth, death) pair. Essential classes have Death = +Inf.
type Point struct {
	Birth float64 `yaml:"birth"`
	Death float64 `yaml:"death"`
}

// Persistence returns Death - Birth.
func (p Point) Persistence() float64 {
	return p.Death - p.Birth
}

// Essential reports whether the class never dies.
func (p Point) Essential() bool {
	return math.IsInf(p.Death, 1)
}

// MarshalJSON encodes the point as [birth, death] with null for an infinite death.
func (p Point) MarshalJSON() ([]byte, error) {
	death := "null"
	if !p.Essential() {
		death = strconv.FormatFloat(p.Death, 'g', -1, 64)
	}
	return []byte("[" + strconv.FormatFloat(p.Birth, 'g', -1, 64) + "," + death + "]"), nil
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []*float64
	if err := json.Unmarshal(bytes.TrimSpace(data), &pair); err != nil {
		return err
	}
	if len(pair) != 2 || pair[0] == nil {
		return fmt.Errorf("diagram point: want [birth, death], got %s", data)
	}
	p.Birth = *pair[0]
	p.Death = math.Inf(1)
	if pair[1] != nil {
		p.Death = *pair[1]
	}
	return nil
}

// Diagram is an ordered sequence of points for one dimension and one direction.
type Diagram []Point

// Sort orders points by birth, then death.
func (d Diagram) Sort() {
	sort.Slice(d, func(i, j int) bool {
		if d[i].Birth != d[j].Birth {
			return d[i].Birth < d[j].Birth
		}
		return d[i].Death < d[j].Death
	})
}

// Finite returns the points with a finite death.
func (d Diagram) Finite() Diagram {
	out := make(Diagram, 0, len(d))
	for _, p := range d {
		if !p.Essential() {
			out = append(out, p)
		}
	}
	return out
}

// ViewKey formats the key of the view for homology dimension dim and the
// 1-based direction index dir.
func ViewKey(dim, dir int) string {
	return "dim_" + strconv.Itoa(dim) + "_dir_" + strconv.Itoa(dir)
}

// ParseViewKey is the inverse of ViewKey.
func ParseViewKey(key string) (dim, dir int, err error) {
	rest, ok := strings.CutPrefix(key, "dim_")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidViewKey, key)
	}
	dimStr, dirStr, ok := strings.Cut(rest, "_dir_")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidViewKey, key)
	}
	dim, err1 := strconv.Atoi(dimStr)
	dir, err2 := strconv.Atoi(dirStr)
	// Round-trip rejects signs and leading zeros.
	if err1 != nil || err2 != nil || dim < 0 || dim >= Dims || dir < 1 || ViewKey(dim, dir) != key {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidViewKey, key)
	}
	return dim, dir, nil
}

// ViewKeys returns all keys for n directions, ordered by direction then dimension.
func ViewKeys(n int) []string {
	keys := make([]string, 0, Dims*n)
	for dir := 1; dir <= n; dir++ {
		for dim := 0; dim < Dims; dim++ {
			keys = append(keys, ViewKey(dim, dir))
		}
	}
	return keys
}
