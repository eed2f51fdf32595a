package provider

import (
	"github.com/hed1ad/gonpht/pkg/diagram"
)

// View maps class label to sample ID to the diagram of one (dimension, direction).
type View map[string]map[string]diagram.Diagram

// Views maps view-key to View.
type Views map[string]View

// NewViews pre-allocates every view-key for the given number of directions
// and, inside each, an empty sample map for every label.
func NewViews(directions int, labels []string) Views {
	views := make(Views, diagram.Dims*directions)
	for _, key := range diagram.ViewKeys(directions) {
		view := make(View, len(labels))
		for _, label := range labels {
			view[label] = make(map[string]diagram.Diagram)
		}
		views[key] = view
	}
	return views
}

// Put stores the diagrams of one sample. Keys without a pre-allocated view
// are created on demand.
func (v Views) Put(label, sampleID string, dgms map[string]diagram.Diagram) {
	for key, dgm := range dgms {
		view, ok := v[key]
		if !ok {
			view = make(View)
			v[key] = view
		}
		samples, ok := view[label]
		if !ok {
			samples = make(map[string]diagram.Diagram)
			view[label] = samples
		}
		samples[sampleID] = dgm
	}
}

// Count returns the number of samples stored in the view.
func (v View) Count() int {
	n := 0
	for _, samples := range v {
		n += len(samples)
	}
	return n
}
