package ml

import (
	"math/rand"

	"go-fracture-classifier/pkg/models"
)

// StratifiedSplit partitions sample indices into train/test sets, shuffling
// within each class so both splits preserve the corpus class balance. The
// seed fixes the partition across runs.
func StratifiedSplit(labels []models.Label, testFraction float64, seed int64) (train, test []int) {
	byClass := map[models.Label][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, label := range []models.Label{models.LabelNotFractured, models.LabelFractured} {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		cut := int(float64(len(indices)) * testFraction)
		test = append(test, indices[:cut]...)
		train = append(train, indices[cut:]...)
	}
	return train, test
}

// StratifiedKFold returns k disjoint test-index folds, each with
// approximately the corpus class balance.
func StratifiedKFold(labels []models.Label, k int, seed int64) [][]int {
	folds := make([][]int, k)
	rng := rand.New(rand.NewSource(seed))

	for _, label := range []models.Label{models.LabelNotFractured, models.LabelFractured} {
		var indices []int
		for i, l := range labels {
			if l == label {
				indices = append(indices, i)
			}
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for i, idx := range indices {
			folds[i%k] = append(folds[i%k], idx)
		}
	}
	return folds
}
