// Package batch runs the per-sample NPHT pipeline over a dataset on a
// bounded worker pool and aggregates the diagrams into provider views.
package batch

import (
	"context"
	"fmt"

	"github.com/hed1ad/gonpht/pkg/diagram"
	"github.com/hed1ad/gonpht/pkg/extract"
	"github.com/hed1ad/gonpht/pkg/imaging"
	pio "github.com/hed1ad/gonpht/pkg/io"
	"github.com/hed1ad/gonpht/pkg/preprocess"
)

// Job is the unit of parallel work: one sample and the direction count.
type Job struct {
	Sample     pio.Sample
	Directions int
}

// Stage names the pipeline step a failure happened in.
type Stage string

const (
	StageLoad       Stage = "load"
	StagePreprocess Stage = "preprocess"
	StageExtract    Stage = "extract"
)

// Result is the outcome of a Job: either *Success or *Failure.
type Result interface {
	// Sample returns the sample the result belongs to.
	Sample() pio.Sample

	result()
}

// Success carries the 2N diagrams of a processed sample.
type Success struct {
	sample   pio.Sample
	Diagrams map[string]diagram.Diagram
}

// Sample returns the processed sample.
func (s *Success) Sample() pio.Sample { return s.sample }

func (*Success) result() {}

// Failure records why a sample could not be processed.
type Failure struct {
	sample pio.Sample
	Stage  Stage
	Err    error
}

// Sample returns the failed sample.
func (f *Failure) Sample() pio.Sample { return f.sample }

func (*Failure) result() {}

// Error implements error.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.sample.ID, f.Stage, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error { return f.Err }

// Record converts the failure for a FailureWriter.
func (f *Failure) Record() pio.FailureRecord {
	return pio.FailureRecord{Sample: f.sample, Stage: string(f.Stage), Message: f.Err.Error()}
}

// LoadFunc reads a sample image from disk.
type LoadFunc func(path string) (imaging.Gray, error)

// Process runs load, preprocess and extract for one job. Every error, and any
// panic, is returned as a *Failure of the stage it happened in.
func Process(ctx context.Context, job Job, load LoadFunc, ex *extract.Extractor) (res Result) {
	stage := StageLoad
	defer func() {
		if r := recover(); r != nil {
			res = &Failure{sample: job.Sample, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	img, err := load(job.Sample.Path)
	if err != nil {
		return &Failure{sample: job.Sample, Stage: stage, Err: err}
	}

	stage = StagePreprocess
	mask, err := preprocess.LargestComponent(img)
	if err != nil {
		return &Failure{sample: job.Sample, Stage: stage, Err: err}
	}

	stage = StageExtract
	dgms, err := ex.Extract(ctx, mask, job.Directions)
	if err != nil {
		return &Failure{sample: job.Sample, Stage: stage, Err: err}
	}

	return &Success{sample: job.Sample, Diagrams: dgms}
}
