// Package pipeline wires the preprocessing, feature-extraction and model
// stages into the two top-level operations: offline training and
// single-image inference.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go-fracture-classifier/internal/config"
	"go-fracture-classifier/internal/corpus"
	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/eval"
	"go-fracture-classifier/internal/logger"
	"go-fracture-classifier/internal/ml"
	"go-fracture-classifier/internal/preprocess"
	"go-fracture-classifier/internal/store"
	"go-fracture-classifier/internal/storage"
	"go-fracture-classifier/internal/texture"
	"go-fracture-classifier/pkg/models"
	"go-fracture-classifier/pkg/validation"
)

// TrainingPipeline runs the one-shot batch job: corpus scan → preprocess →
// extract → split → fit → persist → evaluate.
type TrainingPipeline struct {
	cfg          *config.Config
	loader       *corpus.Loader
	fetcher      storage.ImageFetcher
	preprocessor preprocess.Preprocessor
	extractor    texture.Extractor
	modelStore   store.ModelStore
	validator    *validation.DatasetValidator

	// ShowProgress renders a progress bar during feature extraction.
	ShowProgress bool
}

// NewTrainingPipeline assembles a training pipeline from its stages.
func NewTrainingPipeline(
	cfg *config.Config,
	loader *corpus.Loader,
	fetcher storage.ImageFetcher,
	preprocessor preprocess.Preprocessor,
	extractor texture.Extractor,
	modelStore store.ModelStore,
) *TrainingPipeline {
	return &TrainingPipeline{
		cfg:          cfg,
		loader:       loader,
		fetcher:      fetcher,
		preprocessor: preprocessor,
		extractor:    extractor,
		modelStore:   modelStore,
		validator:    validation.NewDatasetValidator(),
	}
}

// Run trains, persists both artifacts and returns the evaluation report.
func (p *TrainingPipeline) Run(ctx context.Context) (*models.EvaluationReport, error) {
	entries, err := p.loader.Scan()
	if err != nil {
		return nil, err
	}

	dataset, err := p.extractFeatures(ctx, entries)
	if err != nil {
		return nil, err
	}

	if problems := p.validator.Validate(dataset); len(problems) > 0 {
		return nil, apperrors.NewValidationError(
			"corpus is unfit for training: "+strings.Join(problems, "; "), nil)
	}

	trainIdx, testIdx := ml.StratifiedSplit(dataset.Labels, p.cfg.TestFraction, p.cfg.Seed)
	logger.WithFields(logrus.Fields{
		"train": len(trainIdx),
		"test":  len(testIdx),
		"seed":  p.cfg.Seed,
	}).Info("Split corpus")

	trainVectors := make([]models.FeatureVector, len(trainIdx))
	trainLabels := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainVectors[i] = dataset.Vectors[idx]
		trainLabels[i] = int(dataset.Labels[idx])
	}

	scaler := ml.FitScaler(trainVectors)
	if degenerate := scaler.DegenerateDimensions(); len(degenerate) > 0 {
		// Zero-variance dimensions are centered but not divided; never a
		// divide-by-zero, but worth knowing about.
		degenerateErr := apperrors.NewDegenerateScalingError(
			fmt.Sprintf("feature dimensions %v have zero variance in training data", degenerate), nil)
		logger.WithError(degenerateErr).WithField("dimensions", degenerate).
			Warn("Training data has zero-variance feature dimensions")
	}

	trainRows := make([][]float64, len(trainVectors))
	for i, v := range trainVectors {
		scaled := scaler.Transform(v)
		trainRows[i] = scaled.Floats()
	}

	ensemble := ml.NewDefaultEnsemble(p.cfg.Seed)
	logger.Info("Fitting ensemble")
	if err := ensemble.Fit(trainRows, trainLabels); err != nil {
		return nil, err
	}

	if err := p.modelStore.Save(ctx, scaler, ensemble); err != nil {
		return nil, err
	}
	logger.Info("Persisted scaler and ensemble artifacts")

	predicted := make([]models.Label, len(testIdx))
	actual := make([]models.Label, len(testIdx))
	for i, idx := range testIdx {
		scaled := scaler.Transform(dataset.Vectors[idx])
		predicted[i] = models.Label(ensemble.Predict(scaled.Floats()))
		actual[i] = dataset.Labels[idx]
	}

	report, err := eval.Evaluate(predicted, actual)
	if err != nil {
		return nil, err
	}
	report.Samples = dataset.Len()
	report.TrainSamples = len(trainIdx)

	cvVectors := make([]models.FeatureVector, len(trainIdx))
	cvLabels := make([]models.Label, len(trainIdx))
	for i, idx := range trainIdx {
		cvVectors[i] = dataset.Vectors[idx]
		cvLabels[i] = dataset.Labels[idx]
	}
	logger.WithField("folds", p.cfg.CrossValFolds).Info("Running cross-validation")
	mean, stdDev, err := eval.CrossValidate(cvVectors, cvLabels, p.cfg.CrossValFolds, p.cfg.Seed,
		func() *ml.VotingEnsemble { return ml.NewDefaultEnsemble(p.cfg.Seed) })
	if err != nil {
		return nil, err
	}
	report.CrossValMean = mean
	report.CrossValStdDev = stdDev
	report.CrossValFolds = p.cfg.CrossValFolds

	logger.WithFields(logrus.Fields{
		"accuracy": report.Accuracy,
		"cv_mean":  report.CrossValMean,
		"cv_std":   report.CrossValStdDev,
	}).Info("Training complete")
	return &report, nil
}

// extractFeatures decodes, preprocesses and extracts every corpus entry with
// bounded concurrency. Undecodable files are skipped with a warning;
// everything else is fatal.
func (p *TrainingPipeline) extractFeatures(ctx context.Context, entries []corpus.Entry) (models.Dataset, error) {
	type result struct {
		vector models.FeatureVector
		ok     bool
	}
	results := make([]result, len(entries))

	var bar *pb.ProgressBar
	if p.ShowProgress {
		bar = pb.StartNew(len(entries))
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range entries {
		i := i
		g.Go(func() error {
			if bar != nil {
				defer bar.Increment()
			}
			entry := entries[i]

			img, err := p.fetcher.FetchImage(ctx, entry.Path)
			if err != nil {
				if apperrors.IsType(err, apperrors.ErrorTypeDecode) {
					logger.WithError(err).WithField("path", entry.Path).Warn("Skipping undecodable image")
					return nil
				}
				return err
			}

			edges, err := p.preprocessor.Preprocess(img)
			if err != nil {
				return err
			}
			results[i] = result{vector: p.extractor.Extract(edges), ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Dataset{}, err
	}
	if bar != nil {
		bar.Finish()
	}

	var dataset models.Dataset
	skipped := 0
	for i, r := range results {
		if !r.ok {
			skipped++
			continue
		}
		dataset.Vectors = append(dataset.Vectors, r.vector)
		dataset.Labels = append(dataset.Labels, entries[i].Label)
	}

	logger.WithFields(logrus.Fields{
		"samples":       dataset.Len(),
		"skipped":       skipped,
		"fractured":     dataset.CountLabel(models.LabelFractured),
		"not_fractured": dataset.CountLabel(models.LabelNotFractured),
	}).Info("Extracted texture features")
	return dataset, nil
}
