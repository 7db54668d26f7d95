package pipeline

import (
	"context"
	"image"
	"time"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/ml"
	"go-fracture-classifier/internal/preprocess"
	"go-fracture-classifier/internal/store"
	"go-fracture-classifier/internal/storage"
	"go-fracture-classifier/internal/texture"
	"go-fracture-classifier/pkg/models"
)

// TrainedModel is the immutable trained state a caller injects into
// inference: the fitted scaler and ensemble, loaded from a ModelStore or
// built in-memory for tests.
type TrainedModel struct {
	Scaler   *ml.ScalerState
	Ensemble *ml.VotingEnsemble
}

// LoadTrainedModel reads both artifacts from the store.
func LoadTrainedModel(ctx context.Context, s store.ModelStore) (*TrainedModel, error) {
	scaler, ensemble, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &TrainedModel{Scaler: scaler, Ensemble: ensemble}, nil
}

// InferencePipeline classifies one image at a time. It holds no mutable
// state; the trained model is an argument, so callers decide whether to
// reload per call or cache a loaded model for the life of the process.
type InferencePipeline struct {
	fetcher      storage.ImageFetcher
	preprocessor preprocess.Preprocessor
	extractor    texture.Extractor
}

// NewInferencePipeline assembles an inference pipeline.
func NewInferencePipeline(
	fetcher storage.ImageFetcher,
	preprocessor preprocess.Preprocessor,
	extractor texture.Extractor,
) *InferencePipeline {
	return &InferencePipeline{
		fetcher:      fetcher,
		preprocessor: preprocessor,
		extractor:    extractor,
	}
}

// Classify runs preprocess → extract → scale → soft-vote on a decoded image
// and returns the result together with the intermediate stages, which a
// caller may render side by side.
func (p *InferencePipeline) Classify(img image.Image, m *TrainedModel) (*models.ClassificationResult, *preprocess.Stages, error) {
	if m == nil || m.Scaler == nil || m.Ensemble == nil {
		return nil, nil, apperrors.NewArtifactNotFoundError("no trained model supplied", nil)
	}
	start := time.Now()

	stages, err := p.preprocessor.PreprocessStages(img)
	if err != nil {
		return nil, nil, err
	}

	vector := p.extractor.Extract(stages.Edges)
	scaled := m.Scaler.Transform(vector)
	probability, perModel := m.Ensemble.PredictProba(scaled.Floats())

	label := models.LabelNotFractured
	confidence := 1 - probability
	if probability >= 0.5 {
		label = models.LabelFractured
		confidence = probability
	}

	return &models.ClassificationResult{
		Label:              label,
		Prediction:         label.String(),
		Confidence:         confidence,
		ModelProbabilities: perModel,
		Features:           vector.Floats(),
		Timestamp:          start,
		ProcessingTimeSec:  time.Since(start).Seconds(),
	}, stages, nil
}

// ClassifyRef fetches the image behind ref (file path or URL, depending on
// the configured fetcher) and classifies it with the supplied model.
func (p *InferencePipeline) ClassifyRef(ctx context.Context, ref string, m *TrainedModel) (*models.ClassificationResult, *preprocess.Stages, error) {
	img, err := p.fetcher.FetchImage(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return p.Classify(img, m)
}

// ClassifyRefFresh reloads the trained artifacts from the store for this one
// call and then classifies. This is the uncached reference behaviour; the
// API server instead loads once and injects the model itself.
func (p *InferencePipeline) ClassifyRefFresh(ctx context.Context, ref string, s store.ModelStore) (*models.ClassificationResult, *preprocess.Stages, error) {
	m, err := LoadTrainedModel(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return p.ClassifyRef(ctx, ref, m)
}
