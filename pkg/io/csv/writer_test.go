package csv

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pio "github.com/hed1ad/gonpht/pkg/io"
)

func TestWriter(t *testing.T) {
	records := []pio.FailureRecord{
		{
			Sample:  pio.Sample{Path: "/in/a/1.png", Label: "a", ID: "1.png"},
			Stage:   "preprocess",
			Message: "no foreground component",
		},
		{
			Sample:  pio.Sample{Path: "/in/b/2.png", Label: "b", ID: "2.png"},
			Stage:   "extract",
			Message: "direction 3: degenerate diagram detected, \"quoted\"",
		},
	}

	tests := []struct {
		name     string
		opts     []Option
		wantRows int
	}{
		{name: "with header", opts: nil, wantRows: 3},
		{name: "without header", opts: []Option{WithHeader(false)}, wantRows: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.opts...)
			require.NoError(t, w.WriteAll(records))
			require.NoError(t, w.Close())

			rows, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, tt.wantRows)

			last := rows[len(rows)-1]
			assert.Equal(t, []string{"b", "2.png", "/in/b/2.png", "extract", records[1].Message}, last)
		})
	}
}

func TestCreateEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.csv")
	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "label,sample_id,path,stage,message\n", string(data))
}
