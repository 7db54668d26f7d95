package store

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/ml"
	"go-fracture-classifier/pkg/models"
)

func fittedModel(t *testing.T) (*ml.ScalerState, *ml.VotingEnsemble, []models.FeatureVector) {
	t.Helper()

	rng := rand.New(rand.NewSource(1))
	var vectors []models.FeatureVector
	var labels []int
	for i := 0; i < 30; i++ {
		center, label := -2.0, 0
		if i%2 == 1 {
			center, label = 2.0, 1
		}
		var v models.FeatureVector
		for d := range v {
			v[d] = center + rng.NormFloat64()*0.4
		}
		vectors = append(vectors, v)
		labels = append(labels, label)
	}

	scaler := ml.FitScaler(vectors)
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		scaled := scaler.Transform(v)
		rows[i] = scaled.Floats()
	}

	ensemble := ml.NewDefaultEnsemble(42)
	if err := ensemble.Fit(rows, labels); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return scaler, ensemble, vectors
}

func TestFileModelStoreRoundTrip(t *testing.T) {
	scaler, ensemble, vectors := fittedModel(t)
	store := NewFileModelStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, scaler, ensemble); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loadedScaler, loadedEnsemble, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The restored model must predict identically to the in-memory one.
	for i, v := range vectors {
		wantScaled := scaler.Transform(v)
		gotScaled := loadedScaler.Transform(v)
		if wantScaled != gotScaled {
			t.Fatalf("Sample %d: restored scaler disagrees", i)
		}
		want, _ := ensemble.PredictProba(wantScaled.Floats())
		got, _ := loadedEnsemble.PredictProba(gotScaled.Floats())
		if want != got {
			t.Fatalf("Sample %d: restored ensemble disagrees (%g vs %g)", i, got, want)
		}
	}
}

func TestFileModelStoreMissingArtifacts(t *testing.T) {
	store := NewFileModelStore(t.TempDir())

	_, _, err := store.Load(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing artifacts")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeArtifactNotFound) {
		t.Errorf("Expected artifact_not_found error, got %v", err)
	}
}

func TestFileModelStoreCorruptArtifact(t *testing.T) {
	scaler, ensemble, _ := fittedModel(t)
	dir := t.TempDir()
	store := NewFileModelStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, scaler, ensemble); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, EnsembleArtifactName), []byte("not a gob"), 0o644); err != nil {
		t.Fatalf("Failed to corrupt artifact: %v", err)
	}

	_, _, err := store.Load(ctx)
	if err == nil {
		t.Fatal("Expected error for corrupt artifact")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeArtifactNotFound) {
		t.Errorf("Expected artifact_not_found error, got %v", err)
	}
}

func TestFileModelStorePartialArtifacts(t *testing.T) {
	scaler, ensemble, _ := fittedModel(t)
	dir := t.TempDir()
	store := NewFileModelStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, scaler, ensemble); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, ScalerArtifactName)); err != nil {
		t.Fatalf("Failed to remove artifact: %v", err)
	}

	// Both artifacts are required; one alone is not a usable model.
	if _, _, err := store.Load(ctx); err == nil {
		t.Fatal("Expected error when the scaler artifact is missing")
	}
}
