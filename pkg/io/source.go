// Package io provides input/output utilities for sample ingestion and reporting.
package io

import "context"

// Sample is one labeled input image.
type Sample struct {
	// Path is the file location of the image.
	Path string `json:"path"`
	// Label is the class label, the name of the parent folder.
	Label string `json:"label"`
	// ID identifies the sample within its class, the file name.
	ID string `json:"sample_id"`
}

// Dataset is the result of discovering samples.
type Dataset struct {
	// Labels lists every class, including classes without samples.
	Labels []string
	// Samples is ordered by label, then ID.
	Samples []Sample
}

// Source is the interface for discovering labeled samples.
type Source interface {
	// Discover returns the complete dataset.
	Discover(ctx context.Context) (Dataset, error)
}

// FailureWriter is the interface for reporting samples that could not be processed.
type FailureWriter interface {
	// Write outputs a single failure.
	Write(record FailureRecord) error

	// WriteAll outputs multiple failures.
	WriteAll(records []FailureRecord) error

	// Close flushes and releases resources.
	Close() error
}

// FailureRecord describes one failed sample.
type FailureRecord struct {
	Sample
	Stage   string `json:"stage"`
	Message string `json:"message"`
}
