package validation

import (
	"fmt"
	"math"

	"go-fracture-classifier/pkg/models"
)

// DatasetValidator checks a feature dataset before any model is fitted, so a
// degenerate corpus (missing class, misaligned rows, non-finite features)
// fails loudly instead of producing a silently useless model.
type DatasetValidator struct {
	// MinSamplesPerClass is the smallest acceptable class support.
	MinSamplesPerClass int
}

// NewDatasetValidator creates a validator with default thresholds.
func NewDatasetValidator() *DatasetValidator {
	return &DatasetValidator{MinSamplesPerClass: 2}
}

// Validate returns every problem found; an empty slice means the dataset is
// fit for training.
func (v *DatasetValidator) Validate(d models.Dataset) []string {
	var problems []string

	if len(d.Vectors) != len(d.Labels) {
		problems = append(problems, fmt.Sprintf(
			"vectors and labels are misaligned: %d vectors, %d labels", len(d.Vectors), len(d.Labels)))
		return problems
	}
	if d.Len() == 0 {
		problems = append(problems, "dataset is empty")
		return problems
	}

	for _, label := range []models.Label{models.LabelNotFractured, models.LabelFractured} {
		if n := d.CountLabel(label); n < v.MinSamplesPerClass {
			problems = append(problems, fmt.Sprintf(
				"class %q has %d samples, need at least %d", label.String(), n, v.MinSamplesPerClass))
		}
	}

	for i, vec := range d.Vectors {
		for dim, value := range vec {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				problems = append(problems, fmt.Sprintf(
					"sample %d has a non-finite value in dimension %d", i, dim))
			}
		}
	}
	return problems
}
