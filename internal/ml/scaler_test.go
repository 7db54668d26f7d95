package ml

import (
	"math"
	"testing"

	"go-fracture-classifier/pkg/models"
)

func TestFitScalerStandardizes(t *testing.T) {
	vectors := []models.FeatureVector{
		{1, 10, 100, -5, 0.5},
		{2, 20, 200, -10, 1.5},
		{3, 30, 300, -15, 2.5},
		{4, 40, 400, -20, 3.5},
	}

	scaler := FitScaler(vectors)
	scaled := scaler.TransformAll(vectors)

	for d := 0; d < models.FeatureDimensions; d++ {
		mean, variance := 0.0, 0.0
		for _, v := range scaled {
			mean += v[d]
		}
		mean /= float64(len(scaled))
		for _, v := range scaled {
			variance += (v[d] - mean) * (v[d] - mean)
		}
		variance /= float64(len(scaled))

		if math.Abs(mean) > 1e-9 {
			t.Errorf("Dimension %d: expected mean ~0, got %g", d, mean)
		}
		if math.Abs(variance-1) > 1e-9 {
			t.Errorf("Dimension %d: expected variance ~1, got %g", d, variance)
		}
	}
}

func TestScalerZeroVarianceDimension(t *testing.T) {
	vectors := []models.FeatureVector{
		{1, 7, 100, -5, 0.5},
		{2, 7, 200, -10, 1.5},
		{3, 7, 300, -15, 2.5},
	}

	scaler := FitScaler(vectors)

	degenerate := scaler.DegenerateDimensions()
	if len(degenerate) != 1 || degenerate[0] != 1 {
		t.Errorf("Expected dimension 1 to be degenerate, got %v", degenerate)
	}

	// A constant dimension is centered but not divided: output is finite zero.
	for _, v := range vectors {
		out := scaler.Transform(v)
		if out[1] != 0 {
			t.Errorf("Expected zero-variance dimension to map to 0, got %g", out[1])
		}
		for d, value := range out {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				t.Errorf("Dimension %d is not finite: %g", d, value)
			}
		}
	}
}

func TestTransformDoesNotMutateState(t *testing.T) {
	vectors := []models.FeatureVector{
		{1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1},
	}
	scaler := FitScaler(vectors)

	meanBefore := append([]float64(nil), scaler.Mean...)
	stdBefore := append([]float64(nil), scaler.Std...)

	scaler.Transform(models.FeatureVector{9, 9, 9, 9, 9})
	scaler.TransformAll(vectors)

	for d := range meanBefore {
		if scaler.Mean[d] != meanBefore[d] || scaler.Std[d] != stdBefore[d] {
			t.Fatalf("Transform mutated scaler state at dimension %d", d)
		}
	}
}
