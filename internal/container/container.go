// Package container wires the dependency graph for the binaries.
package container

import (
	"net/http"

	"go-fracture-classifier/internal/config"
	"go-fracture-classifier/internal/corpus"
	"go-fracture-classifier/internal/pipeline"
	"go-fracture-classifier/internal/preprocess"
	"go-fracture-classifier/internal/service"
	"go-fracture-classifier/internal/storage"
	"go-fracture-classifier/internal/store"
	"go-fracture-classifier/internal/texture"
	"go-fracture-classifier/internal/transport"
)

// Container holds all application dependencies.
type Container struct {
	config       *config.Config
	modelStore   store.ModelStore
	preprocessor preprocess.Preprocessor
	extractor    texture.Extractor

	trainingPipeline  *pipeline.TrainingPipeline
	inferencePipeline *pipeline.InferencePipeline
	service           service.ClassificationService
	handler           http.Handler
}

// NewContainer builds the full dependency graph from configuration. The
// training pipeline reads images from disk; the API classifies images fetched
// over HTTP.
func NewContainer(cfg *config.Config) (*Container, error) {
	modelStore, err := store.NewModelStore(cfg)
	if err != nil {
		return nil, err
	}

	preprocessor := preprocess.NewPreprocessor(cfg.ImageSize)
	extractor := texture.NewExtractor()

	loader := corpus.NewLoader(cfg.CorpusRoot, cfg.FracturedDirName, cfg.NotFracturedDirName)
	fileFetcher := storage.NewFileImageFetcher()
	httpFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)

	trainingPipeline := pipeline.NewTrainingPipeline(cfg, loader, fileFetcher, preprocessor, extractor, modelStore)
	inferencePipeline := pipeline.NewInferencePipeline(httpFetcher, preprocessor, extractor)

	svc := service.NewClassificationService(inferencePipeline, modelStore)
	handler := transport.NewHandler(svc, cfg)

	return &Container{
		config:            cfg,
		modelStore:        modelStore,
		preprocessor:      preprocessor,
		extractor:         extractor,
		trainingPipeline:  trainingPipeline,
		inferencePipeline: inferencePipeline,
		service:           svc,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler for the API server.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// TrainingPipeline returns the offline training pipeline.
func (c *Container) TrainingPipeline() *pipeline.TrainingPipeline {
	return c.trainingPipeline
}

// InferencePipeline returns the single-image inference pipeline.
func (c *Container) InferencePipeline() *pipeline.InferencePipeline {
	return c.inferencePipeline
}

// ModelStore returns the artifact store.
func (c *Container) ModelStore() store.ModelStore {
	return c.modelStore
}

// Service returns the classification service.
func (c *Container) Service() service.ClassificationService {
	return c.service
}
