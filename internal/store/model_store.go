// Package store persists the trained state as two independent artifacts: the
// fitted scaler and the fitted voting ensemble. A model saved and reloaded
// must produce identical predictions to the in-memory fitted model, which
// gob round-tripping of the plain-number states guarantees.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/ml"
)

const (
	ScalerArtifactName   = "scaler.gob"
	EnsembleArtifactName = "ensemble.gob"
)

// ModelStore saves and loads the fitted scaler and ensemble. Load fails with
// an artifact_not_found error when either artifact is absent or unreadable;
// inference cannot proceed without both.
type ModelStore interface {
	Save(ctx context.Context, scaler *ml.ScalerState, ensemble *ml.VotingEnsemble) error
	Load(ctx context.Context) (*ml.ScalerState, *ml.VotingEnsemble, error)
}

// fileModelStore keeps both artifacts under one directory.
type fileModelStore struct {
	dir string
}

// NewFileModelStore creates a filesystem-backed store rooted at dir.
func NewFileModelStore(dir string) ModelStore {
	return &fileModelStore{dir: dir}
}

func (s *fileModelStore) Save(_ context.Context, scaler *ml.ScalerState, ensemble *ml.VotingEnsemble) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return apperrors.NewInternalError("failed to create artifact directory", err)
	}
	if err := writeGob(filepath.Join(s.dir, ScalerArtifactName), scaler); err != nil {
		return err
	}
	return writeGob(filepath.Join(s.dir, EnsembleArtifactName), ensemble)
}

func (s *fileModelStore) Load(_ context.Context) (*ml.ScalerState, *ml.VotingEnsemble, error) {
	var scaler ml.ScalerState
	if err := readGob(filepath.Join(s.dir, ScalerArtifactName), &scaler); err != nil {
		return nil, nil, err
	}
	var ensemble ml.VotingEnsemble
	if err := readGob(filepath.Join(s.dir, EnsembleArtifactName), &ensemble); err != nil {
		return nil, nil, err
	}
	return &scaler, &ensemble, nil
}

func writeGob(path string, value interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to encode artifact %s", filepath.Base(path)), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to write artifact %s", filepath.Base(path)), err)
	}
	return nil
}

func readGob(path string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewArtifactNotFoundError(
			fmt.Sprintf("artifact %s is missing; train before running inference", filepath.Base(path)), err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(value); err != nil {
		return apperrors.NewArtifactNotFoundError(
			fmt.Sprintf("artifact %s is unreadable", filepath.Base(path)), err)
	}
	return nil
}
