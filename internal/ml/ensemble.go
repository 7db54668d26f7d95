package ml

import (
	"encoding/gob"

	apperrors "go-fracture-classifier/internal/errors"
)

func init() {
	// Concrete estimators travel through gob behind the BaseEstimator
	// interface when an ensemble is persisted.
	gob.Register(&SVM{})
	gob.Register(&RandomForest{})
}

// BaseEstimator is the fit/predict-probability capability the ensemble votes
// over. The two default members are interchangeable with any other
// implementation; the pipelines only ever see this interface.
type BaseEstimator interface {
	// Name identifies the estimator in results and logs.
	Name() string
	// Fit trains on scaled feature rows and binary labels (0/1).
	Fit(X [][]float64, y []int) error
	// PredictProba returns the probability of class 1 for one scaled row.
	PredictProba(x []float64) float64
}

// VotingEnsemble combines its estimators by soft voting: class probabilities
// are averaged before thresholding, rather than majority-voting hard labels.
type VotingEnsemble struct {
	Estimators []BaseEstimator
	Fitted     bool
}

// NewDefaultEnsemble builds the standard pair: an RBF-kernel support-vector
// classifier and a 100-tree random forest seeded for reproducibility.
func NewDefaultEnsemble(seed int64) *VotingEnsemble {
	return &VotingEnsemble{
		Estimators: []BaseEstimator{
			NewSVM(1.0, seed),
			NewRandomForest(100, seed),
		},
	}
}

// Fit trains every estimator independently on the same scaled data.
func (e *VotingEnsemble) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return apperrors.NewValidationError("ensemble fit requires aligned, non-empty training data", nil)
	}
	for _, est := range e.Estimators {
		if err := est.Fit(X, y); err != nil {
			return err
		}
	}
	e.Fitted = true
	return nil
}

// PredictProba returns the soft-vote average probability of class 1 and the
// per-estimator probabilities that produced it.
func (e *VotingEnsemble) PredictProba(x []float64) (float64, map[string]float64) {
	perModel := make(map[string]float64, len(e.Estimators))
	sum := 0.0
	for _, est := range e.Estimators {
		p := est.PredictProba(x)
		perModel[est.Name()] = p
		sum += p
	}
	return sum / float64(len(e.Estimators)), perModel
}

// Predict thresholds the averaged probability at 0.5.
func (e *VotingEnsemble) Predict(x []float64) int {
	p, _ := e.PredictProba(x)
	if p >= 0.5 {
		return 1
	}
	return 0
}
