package models

import (
	"fmt"
	"strings"
)

// ClassMetrics holds per-class evaluation figures.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvaluationReport summarises a training run on the held-out split.
type EvaluationReport struct {
	Samples        int     `json:"samples"`
	TrainSamples   int     `json:"train_samples"`
	TestSamples    int     `json:"test_samples"`
	Accuracy       float64 `json:"accuracy"`
	CrossValMean   float64 `json:"cross_val_mean"`
	CrossValStdDev float64 `json:"cross_val_std_dev"`
	CrossValFolds  int     `json:"cross_val_folds"`

	// Confusion counts with "fractured" as the positive class.
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`

	PerClass map[string]ClassMetrics `json:"per_class"`
}

// String renders the report in a classification-report layout.
func (r EvaluationReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples: %d (train %d / test %d)\n", r.Samples, r.TrainSamples, r.TestSamples)
	fmt.Fprintf(&b, "accuracy: %.4f\n", r.Accuracy)
	if r.CrossValFolds > 0 {
		fmt.Fprintf(&b, "%d-fold cv accuracy: %.4f (+/- %.4f)\n", r.CrossValFolds, r.CrossValMean, r.CrossValStdDev)
	}
	fmt.Fprintf(&b, "%-16s %9s %9s %9s %9s\n", "", "precision", "recall", "f1", "support")
	for _, name := range []string{LabelNotFractured.String(), LabelFractured.String()} {
		m, ok := r.PerClass[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%-16s %9.4f %9.4f %9.4f %9d\n", name, m.Precision, m.Recall, m.F1, m.Support)
	}
	return b.String()
}
