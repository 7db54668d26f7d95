package ml

import (
	"math"
	"math/rand"

	apperrors "go-fracture-classifier/internal/errors"
)

// RandomForest is a bagged ensemble of CART trees. The seed fixes both the
// bootstrap samples and the per-split feature subsets, so training is
// reproducible run to run.
type RandomForest struct {
	NumTrees    int
	MaxFeatures int // 0 means sqrt(dims), resolved at fit
	Seed        int64

	Trees   []*TreeNode
	Trained bool
}

// NewRandomForest creates an untrained forest.
func NewRandomForest(numTrees int, seed int64) *RandomForest {
	return &RandomForest{NumTrees: numTrees, Seed: seed}
}

func (f *RandomForest) Name() string {
	return "random_forest"
}

// Fit grows every tree on a bootstrap sample of the training rows.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return apperrors.NewValidationError("forest fit requires aligned, non-empty training data", nil)
	}
	dims := len(X[0])

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(dims)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*TreeNode, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		params := treeParams{
			maxFeatures:     maxFeatures,
			minSamplesSplit: 2,
			rng:             rand.New(rand.NewSource(rng.Int63())),
		}
		f.Trees[t] = growTree(X, y, indices, params)
	}
	f.Trained = true
	return nil
}

// PredictProba averages the leaf class-1 fractions over all trees.
func (f *RandomForest) PredictProba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}
