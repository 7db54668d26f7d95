// Package ml holds the learned half of the pipeline: feature
// standardization, the two base estimators and the soft-voting ensemble that
// combines them, plus the split helpers used for model selection.
package ml

import (
	"gonum.org/v1/gonum/stat"

	"go-fracture-classifier/pkg/models"
)

// ScalerState carries the per-dimension statistics fitted on training
// feature vectors. Immutable after fitting; every transform, training or
// inference alike, uses only these numbers.
type ScalerState struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-dimension mean and population standard deviation
// over the training vectors.
func FitScaler(vectors []models.FeatureVector) *ScalerState {
	dims := models.FeatureDimensions
	state := &ScalerState{
		Mean: make([]float64, dims),
		Std:  make([]float64, dims),
	}

	column := make([]float64, len(vectors))
	for d := 0; d < dims; d++ {
		for i, v := range vectors {
			column[i] = v[d]
		}
		state.Mean[d] = stat.Mean(column, nil)
		state.Std[d] = stat.PopStdDev(column, nil)
	}
	return state
}

// DegenerateDimensions reports the indices with zero variance in the fitted
// training data. Those dimensions are centered but not divided at transform
// time, so scaling can never divide by zero.
func (s *ScalerState) DegenerateDimensions() []int {
	var dims []int
	for d, sd := range s.Std {
		if sd == 0 {
			dims = append(dims, d)
		}
	}
	return dims
}

// Transform standardizes one vector with the fitted statistics. The receiver
// is never modified.
func (s *ScalerState) Transform(v models.FeatureVector) models.FeatureVector {
	var out models.FeatureVector
	for d := 0; d < models.FeatureDimensions; d++ {
		centered := v[d] - s.Mean[d]
		if s.Std[d] > 0 {
			out[d] = centered / s.Std[d]
		} else {
			out[d] = centered
		}
	}
	return out
}

// TransformAll standardizes a batch of vectors.
func (s *ScalerState) TransformAll(vectors []models.FeatureVector) []models.FeatureVector {
	out := make([]models.FeatureVector, len(vectors))
	for i, v := range vectors {
		out[i] = s.Transform(v)
	}
	return out
}
