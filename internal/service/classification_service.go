// Package service exposes the classification use case to transports. It owns
// URL validation and the cached trained model; the pipeline underneath stays
// transport-agnostic.
package service

import (
	"context"
	"net/url"
	"sync"

	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/pipeline"
	"go-fracture-classifier/internal/store"
	"go-fracture-classifier/pkg/models"
)

// ClassificationService defines the operations the API surface needs.
type ClassificationService interface {
	// ClassifyImage fetches the image behind imageURL and classifies it.
	ClassifyImage(ctx context.Context, imageURL string) (*models.ClassificationResponse, error)

	// ValidateImageURL rejects refs the fetcher cannot handle.
	ValidateImageURL(imageURL string) error

	// ReloadModel drops the cached artifacts and reloads them from the store,
	// so a retrained model can be picked up without a restart.
	ReloadModel(ctx context.Context) error
}

type classificationService struct {
	inference  *pipeline.InferencePipeline
	modelStore store.ModelStore

	mu    sync.RWMutex
	model *pipeline.TrainedModel
}

// NewClassificationService creates a service that lazily loads the trained
// artifacts on first use and caches them for the life of the process.
func NewClassificationService(inference *pipeline.InferencePipeline, modelStore store.ModelStore) ClassificationService {
	return &classificationService{
		inference:  inference,
		modelStore: modelStore,
	}
}

func (s *classificationService) ClassifyImage(ctx context.Context, imageURL string) (*models.ClassificationResponse, error) {
	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	model, err := s.loadModel(ctx)
	if err != nil {
		return nil, err
	}

	result, _, err := s.inference.ClassifyRef(ctx, imageURL, model)
	if err != nil {
		return nil, err
	}

	return &models.ClassificationResponse{
		ImageURL: imageURL,
		Result:   *result,
	}, nil
}

func (s *classificationService) ValidateImageURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("invalid URL format", err)
	}
	if parsed.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError("URL scheme must be http or https", nil)
	}
	return nil
}

func (s *classificationService) ReloadModel(ctx context.Context) error {
	model, err := pipeline.LoadTrainedModel(ctx, s.modelStore)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

func (s *classificationService) loadModel(ctx context.Context) (*pipeline.TrainedModel, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		model, err := pipeline.LoadTrainedModel(ctx, s.modelStore)
		if err != nil {
			return nil, err
		}
		s.model = model
	}
	return s.model, nil
}
