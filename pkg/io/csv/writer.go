// Package csv provides CSV export of per-sample failures.
package csv

import (
	"encoding/csv"
	"io"
	"os"

	pio "github.com/hed1ad/gonpht/pkg/io"
)

// Header is the column layout written by Writer.
var Header = []string{"label", "sample_id", "path", "stage", "message"}

// Writer writes failure records as CSV rows.
type Writer struct {
	closer    io.Closer
	writer    *csv.Writer
	hasHeader bool
	wroteHead bool
}

var _ pio.FailureWriter = (*Writer)(nil)

// Option configures a CSV writer.
type Option func(*Writer)

// WithHeader controls whether a header row is written before the first record.
func WithHeader(has bool) Option {
	return func(w *Writer) {
		w.hasHeader = has
	}
}

// NewWriter creates a writer on w. Close does not close w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	cw := &Writer{
		writer:    csv.NewWriter(w),
		hasHeader: true,
	}

	for _, opt := range opts {
		opt(cw)
	}

	return cw
}

// Create creates or truncates the named file and returns a writer on it.
func Create(filename string, opts ...Option) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := NewWriter(file, opts...)
	w.closer = file
	return w, nil
}

// Write outputs a single record.
func (w *Writer) Write(record pio.FailureRecord) error {
	if w.hasHeader && !w.wroteHead {
		if err := w.writer.Write(Header); err != nil {
			return err
		}
		w.wroteHead = true
	}
	return w.writer.Write(formatRow(record))
}

// WriteAll outputs multiple records and flushes.
func (w *Writer) WriteAll(records []pio.FailureRecord) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes buffered rows and releases resources.
func (w *Writer) Close() error {
	if w.hasHeader && !w.wroteHead {
		if err := w.writer.Write(Header); err != nil {
			return err
		}
		w.wroteHead = true
	}
	w.writer.Flush()
	err := w.writer.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// formatRow converts a record to columns in Header order.
func formatRow(r pio.FailureRecord) []string {
	return []string{r.Label, r.ID, r.Path, r.Stage, r.Message}
}
