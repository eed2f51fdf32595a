// Package preprocess isolates the dominant foreground shape of a grayscale image.
package preprocess

import (
	"errors"

	"github.com/hed1ad/gonpht/pkg/imaging"
)

// ErrNoForeground is returned when an image has no non-zero pixel.
var ErrNoForeground = errors.New("no foreground component")

// Label assigns 4-connected component labels to the non-zero pixels of g.
// Labels run from 1 to n in raster order of each component's first pixel;
// background pixels are 0.
func Label(g imaging.Gray) (labels []int, n int) {
	labels = make([]int, len(g.Pix))
	stack := make([]int, 0, 64)

	for start, v := range g.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%g.Width, i/g.Width

			for _, nb := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				nx, ny := nb[0], nb[1]
				if nx < 0 || ny < 0 || nx >= g.Width || ny >= g.Height {
					continue
				}
				j := ny*g.Width + nx
				if g.Pix[j] != 0 && labels[j] == 0 {
					labels[j] = n
					stack = append(stack, j)
				}
			}
		}
	}

	return labels, n
}

// Volumes returns the pixel count of each label; index 0 is label 1.
func Volumes(labels []int, n int) []int {
	volumes := make([]int, n)
	for _, l := range labels {
		if l > 0 {
			volumes[l-1]++
		}
	}
	return volumes
}

// LargestComponent returns a mask of the 4-connected foreground component
// with the most pixels. Ties go to the component found first.
func LargestComponent(g imaging.Gray) (imaging.Mask, error) {
	labels, n := Label(g)
	if n == 0 {
		return imaging.Mask{}, ErrNoForeground
	}

	best, bestVolume := 0, -1
	for i, v := range Volumes(labels, n) {
		if v > bestVolume {
			best, bestVolume = i+1, v
		}
	}

	mask := imaging.NewMask(g.Width, g.Height)
	for i, l := range labels {
		mask.Pix[i] = l == best
	}
	return mask, nil
}
