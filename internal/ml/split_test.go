package ml

import (
	"testing"

	"go-fracture-classifier/pkg/models"
)

func balancedLabels(perClass int) []models.Label {
	labels := make([]models.Label, 0, perClass*2)
	for i := 0; i < perClass; i++ {
		labels = append(labels, models.LabelNotFractured, models.LabelFractured)
	}
	return labels
}

func TestStratifiedSplitProportions(t *testing.T) {
	labels := balancedLabels(50)

	train, test := StratifiedSplit(labels, 0.2, 42)
	if len(train)+len(test) != len(labels) {
		t.Fatalf("Split lost samples: %d + %d != %d", len(train), len(test), len(labels))
	}
	if len(test) != 20 {
		t.Errorf("Expected 20 test samples at fraction 0.2, got %d", len(test))
	}

	// Each class contributes its own 20%.
	testPerClass := map[models.Label]int{}
	for _, idx := range test {
		testPerClass[labels[idx]]++
	}
	for _, label := range []models.Label{models.LabelNotFractured, models.LabelFractured} {
		if testPerClass[label] != 10 {
			t.Errorf("Expected 10 test samples of class %q, got %d", label.String(), testPerClass[label])
		}
	}
}

func TestStratifiedSplitNoOverlap(t *testing.T) {
	labels := balancedLabels(25)

	train, test := StratifiedSplit(labels, 0.2, 42)
	seen := map[int]bool{}
	for _, idx := range train {
		seen[idx] = true
	}
	for _, idx := range test {
		if seen[idx] {
			t.Fatalf("Index %d appears in both train and test", idx)
		}
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	labels := balancedLabels(30)

	train1, test1 := StratifiedSplit(labels, 0.2, 42)
	train2, test2 := StratifiedSplit(labels, 0.2, 42)

	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatal("Expected identical split sizes for identical seed")
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatal("Expected identical train indices for identical seed")
		}
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatal("Expected identical test indices for identical seed")
		}
	}
}

func TestStratifiedKFoldCoversEverySample(t *testing.T) {
	labels := balancedLabels(23) // 46 samples, not divisible by 5

	folds := StratifiedKFold(labels, 5, 42)
	if len(folds) != 5 {
		t.Fatalf("Expected 5 folds, got %d", len(folds))
	}

	seen := map[int]int{}
	for _, fold := range folds {
		for _, idx := range fold {
			seen[idx]++
		}
	}
	if len(seen) != len(labels) {
		t.Errorf("Expected every sample in exactly one fold, covered %d of %d", len(seen), len(labels))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("Sample %d appears in %d folds", idx, count)
		}
	}
}

func TestStratifiedKFoldClassBalance(t *testing.T) {
	labels := balancedLabels(25) // 5 per class per fold at k=5

	folds := StratifiedKFold(labels, 5, 42)
	for i, fold := range folds {
		perClass := map[models.Label]int{}
		for _, idx := range fold {
			perClass[labels[idx]]++
		}
		if perClass[models.LabelFractured] != 5 || perClass[models.LabelNotFractured] != 5 {
			t.Errorf("Fold %d is unbalanced: %v", i, perClass)
		}
	}
}
