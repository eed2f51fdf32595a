package preprocess

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/gonpht/pkg/imaging"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		wantN int
	}{
		{name: "empty", rows: []string{"...", "..."}, wantN: 0},
		{name: "single pixel", rows: []string{".#.", "..."}, wantN: 1},
		{name: "diagonal pixels are separate", rows: []string{"#.", ".#"}, wantN: 2},
		{name: "u shape is one component", rows: []string{"#.#", "#.#", "###"}, wantN: 1},
		{name: "three blobs", rows: []string{"##..#", ".....", "#...."}, wantN: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n := Label(grayFromRows(tt.rows))
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestLabelRasterOrder(t *testing.T) {
	labels, n := Label(grayFromRows([]string{
		"..#",
		"#..",
	}))
	require.Equal(t, 2, n)
	assert.Equal(t, []int{0, 0, 1, 2, 0, 0}, labels)
}

func TestLargestComponent(t *testing.T) {
	t.Run("picks largest", func(t *testing.T) {
		g := grayFromRows([]string{
			"#...##",
			"....##",
			"##..##",
		})
		mask, err := LargestComponent(g)
		require.NoError(t, err)
		assert.Equal(t, 6, mask.Count())
		assert.True(t, mask.At(4, 0))
		assert.False(t, mask.At(0, 0))
		assert.False(t, mask.At(0, 2))
	})

	t.Run("tie goes to first", func(t *testing.T) {
		g := grayFromRows([]string{"##.##"})
		mask, err := LargestComponent(g)
		require.NoError(t, err)
		assert.True(t, mask.At(0, 0))
		assert.False(t, mask.At(3, 0))
	})

	t.Run("no foreground", func(t *testing.T) {
		_, err := LargestComponent(grayFromRows([]string{"...", "..."}))
		assert.ErrorIs(t, err, ErrNoForeground)
	})
}

func TestLargestComponentProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		g := imaging.NewGray(12, 9)
		for i := range g.Pix {
			if rng.Float64() < 0.45 {
				g.Pix[i] = float64(1 + rng.Intn(255))
			}
		}
		labels, n := Label(g)
		if n == 0 {
			continue
		}
		maxVolume := 0
		for _, v := range Volumes(labels, n) {
			maxVolume = max(maxVolume, v)
		}

		mask, err := LargestComponent(g)
		require.NoError(t, err)
		assert.Equal(t, maxVolume, mask.Count())
		for i, set := range mask.Pix {
			if set {
				assert.NotZero(t, g.Pix[i], "mask must be a subset of the foreground")
			}
		}
	}
}

func BenchmarkLargestComponent(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := imaging.NewGray(256, 256)
	for i := range g.Pix {
		if rng.Float64() < 0.6 {
			g.Pix[i] = 255
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LargestComponent(g)
	}
}

func grayFromRows(rows []string) imaging.Gray {
	g := imaging.NewGray(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				g.Set(x, y, 255)
			}
		}
	}
	return g
}
