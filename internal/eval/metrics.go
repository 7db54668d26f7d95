// Package eval scores trained classifiers: held-out confusion metrics,
// per-class precision/recall/F1 and stratified cross-validation.
package eval

import (
	"gonum.org/v1/gonum/stat"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/ml"
	"go-fracture-classifier/pkg/models"
)

// Evaluate fills the confusion counts, accuracy and per-class metrics of a
// report from aligned predicted/actual labels. "Fractured" is the positive
// class.
func Evaluate(predicted, actual []models.Label) (models.EvaluationReport, error) {
	if len(predicted) != len(actual) || len(predicted) == 0 {
		return models.EvaluationReport{}, apperrors.NewValidationError("evaluate requires aligned, non-empty label sequences", nil)
	}

	var report models.EvaluationReport
	for i := range predicted {
		switch {
		case predicted[i] == models.LabelFractured && actual[i] == models.LabelFractured:
			report.TruePositives++
		case predicted[i] == models.LabelNotFractured && actual[i] == models.LabelNotFractured:
			report.TrueNegatives++
		case predicted[i] == models.LabelFractured && actual[i] == models.LabelNotFractured:
			report.FalsePositives++
		default:
			report.FalseNegatives++
		}
	}

	total := float64(len(predicted))
	report.TestSamples = len(predicted)
	report.Accuracy = float64(report.TruePositives+report.TrueNegatives) / total

	report.PerClass = map[string]models.ClassMetrics{
		models.LabelFractured.String(): classMetrics(
			report.TruePositives, report.FalsePositives, report.FalseNegatives,
			report.TruePositives+report.FalseNegatives),
		models.LabelNotFractured.String(): classMetrics(
			report.TrueNegatives, report.FalseNegatives, report.FalsePositives,
			report.TrueNegatives+report.FalsePositives),
	}
	return report, nil
}

func classMetrics(tp, fp, fn, support int) models.ClassMetrics {
	m := models.ClassMetrics{Support: support}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// CrossValidate runs stratified k-fold cross-validation over raw feature
// vectors. Each fold fits its own scaler on the fold's training rows, so no
// statistics leak from the held-out rows.
func CrossValidate(vectors []models.FeatureVector, labels []models.Label, k int, seed int64,
	newEnsemble func() *ml.VotingEnsemble) (mean, stdDev float64, err error) {

	folds := ml.StratifiedKFold(labels, k, seed)
	accuracies := make([]float64, 0, k)

	inFold := make([]bool, len(vectors))
	for _, fold := range folds {
		if len(fold) == 0 {
			continue
		}
		for i := range inFold {
			inFold[i] = false
		}
		for _, idx := range fold {
			inFold[idx] = true
		}

		var trainVectors []models.FeatureVector
		var trainLabels []int
		for i, v := range vectors {
			if !inFold[i] {
				trainVectors = append(trainVectors, v)
				trainLabels = append(trainLabels, int(labels[i]))
			}
		}

		scaler := ml.FitScaler(trainVectors)
		trainRows := make([][]float64, len(trainVectors))
		for i, v := range trainVectors {
			scaled := scaler.Transform(v)
			trainRows[i] = scaled.Floats()
		}

		ensemble := newEnsemble()
		if err := ensemble.Fit(trainRows, trainLabels); err != nil {
			return 0, 0, err
		}

		correct := 0
		for _, idx := range fold {
			scaled := scaler.Transform(vectors[idx])
			if models.Label(ensemble.Predict(scaled.Floats())) == labels[idx] {
				correct++
			}
		}
		accuracies = append(accuracies, float64(correct)/float64(len(fold)))
	}

	if len(accuracies) == 0 {
		return 0, 0, apperrors.NewValidationError("cross-validation produced no folds", nil)
	}
	return stat.Mean(accuracies, nil), stat.PopStdDev(accuracies, nil), nil
}
