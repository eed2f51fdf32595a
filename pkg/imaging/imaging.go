// Package imaging loads raster images as grayscale intensities and provides
// the binary mask type shared by the preprocessing and transform stages.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrEmptyImage is returned for images with zero width or height.
var ErrEmptyImage = errors.New("empty image")

// Gray is a row-major grayscale intensity array. Zero is background.
type Gray struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGray allocates a zero (all background) image.
func NewGray(width, height int) Gray {
	return Gray{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the intensity at (x, y).
func (g Gray) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set sets the intensity at (x, y).
func (g Gray) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Mask is a row-major binary image.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is set. Out-of-bounds coordinates are unset.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set sets (x, y).
func (m Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// FromImage converts img to luminance intensities in [0, 255].
func FromImage(img image.Image) Gray {
	b := img.Bounds()
	g := NewGray(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			g.Set(x-b.Min.X, y-b.Min.Y, float64(c.Y)/257)
		}
	}
	return g
}

// Load decodes the image file at path into grayscale intensities.
func Load(path string) (Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return Gray{}, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Gray{}, fmt.Errorf("decode %s: %w", path, err)
	}
	g := FromImage(img)
	if g.Width == 0 || g.Height == 0 {
		return Gray{}, fmt.Errorf("%s image %s: %w", format, path, ErrEmptyImage)
	}
	return g, nil
}
