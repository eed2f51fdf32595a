package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/gonpht/pkg/extract"
	"github.com/hed1ad/gonpht/pkg/imaging"
	"github.com/hed1ad/gonpht/pkg/io/folder"
	"github.com/hed1ad/gonpht/pkg/npht/discrete"
	"github.com/hed1ad/gonpht/pkg/preprocess"
)

func TestRunTwoClasses(t *testing.T) {
	root := t.TempDir()
	writeShape(t, root, "A", "sampleA.png", []string{"....", ".##.", ".##.", "...."})
	writeShape(t, root, "B", "sampleB.png", []string{"#...", "###.", "#.#.", "...."})
	writeFile(t, root, "B", "Thumbs.db")

	report, err := newOrchestrator(root).Run(context.Background(), 2)
	require.NoError(t, err)

	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, []string{"A", "B"}, report.Labels)
	require.Len(t, report.Views, 4)
	for _, key := range []string{"dim_0_dir_1", "dim_1_dir_1", "dim_0_dir_2", "dim_1_dir_2"} {
		view := report.Views[key]
		require.Len(t, view, 2, key)
		assert.Len(t, view["A"], 1)
		assert.Contains(t, view["A"], "sampleA.png")
		assert.Len(t, view["B"], 1)
		assert.Contains(t, view["B"], "sampleB.png")
	}

	p := report.Provider()
	assert.Equal(t, 2, p.Meta.NumberOfDirections)
	assert.Equal(t, 2, p.Meta.Samples)
	assert.Zero(t, p.Meta.Failures)
	assert.NoError(t, p.Validate())
}

func TestRunIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	writeShape(t, root, "A", "good.png", []string{".#.", "###", ".#."})
	writeShape(t, root, "A", "blank.png", []string{"...", "...", "..."})
	writeFile(t, root, "B", "broken.png")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "C"), 0o755))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	progress := &countingProgress{}

	report, err := newOrchestrator(root, WithLogger(logger), WithProgress(progress)).Run(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	byID := map[string]*Failure{}
	for _, f := range report.Failures {
		byID[f.Sample().ID] = f
	}
	require.Contains(t, byID, "blank.png")
	assert.Equal(t, StagePreprocess, byID["blank.png"].Stage)
	assert.ErrorIs(t, byID["blank.png"], preprocess.ErrNoForeground)
	require.Contains(t, byID, "broken.png")
	assert.Equal(t, StageLoad, byID["broken.png"].Stage)

	require.Len(t, report.Views, 6)
	for key, view := range report.Views {
		assert.Len(t, view, 3, "every label keeps its slot in %s", key)
		assert.Equal(t, 1, view.Count(), key)
		assert.Contains(t, view["A"], "good.png")
		assert.NotContains(t, view["A"], "blank.png")
		assert.Empty(t, view["B"])
		assert.Empty(t, view["C"])
	}

	assert.Equal(t, 3, progress.total)
	assert.Equal(t, 3, progress.advanced)
	assert.True(t, progress.finished)
	assert.Contains(t, logs.String(), "sample failed")
	assert.Contains(t, logs.String(), "batch complete")
}

func TestRunIdempotent(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"1.png", "2.png", "3.png"} {
		writeShape(t, root, "A", id, []string{"##..", "####", ".#.#", ".###"})
	}
	writeShape(t, root, "B", "4.png", []string{"#...", "##..", "###.", "####"})

	first, err := newOrchestrator(root, WithWorkers(3)).Run(context.Background(), 5)
	require.NoError(t, err)
	second, err := newOrchestrator(root, WithWorkers(1)).Run(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, first.Views, second.Views)
}

func TestRunErrors(t *testing.T) {
	t.Run("invalid directions", func(t *testing.T) {
		_, err := newOrchestrator(t.TempDir()).Run(context.Background(), 0)
		assert.Error(t, err)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := newOrchestrator(filepath.Join(t.TempDir(), "missing")).Run(context.Background(), 1)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled mid batch", func(t *testing.T) {
		root := t.TempDir()
		for _, id := range []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png"} {
			writeShape(t, root, "A", id, []string{"#"})
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		load := func(path string) (imaging.Gray, error) {
			cancel()
			return imaging.Load(path)
		}

		_, err := newOrchestrator(root, WithWorkers(1), WithLoader(load)).Run(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewDefaults(t *testing.T) {
	o := New(folder.New(t.TempDir()), extract.New(discrete.New()), WithWorkers(-2))
	assert.Equal(t, 1, o.workers)
	assert.NotNil(t, o.logger)

	o = New(folder.New(t.TempDir()), extract.New(discrete.New()))
	assert.Equal(t, 4, o.workers)
}

type countingProgress struct {
	total    int
	advanced int
	finished bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Advance()        { p.advanced++ }
func (p *countingProgress) Finish()         { p.finished = true }

func newOrchestrator(root string, opts ...Option) *Orchestrator {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	return New(folder.New(root), extract.New(discrete.New()), opts...)
}

func writeShape(t *testing.T, root, label, name string, rows []string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				img.SetGray(x, y, color.Gray{Y: 200})
			}
		}
	}

	dir := filepath.Join(root, label)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFile(t *testing.T, root, label, name string) {
	t.Helper()
	dir := filepath.Join(root, label)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not an image"), 0o644))
}
