package ml

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a CART decision tree. Leaves carry the class-1
// fraction of the training samples that reached them, so the forest can
// average probabilities instead of hard votes.
type TreeNode struct {
	Leaf        bool
	Feature     int
	Threshold   float64
	Probability float64
	Left        *TreeNode
	Right       *TreeNode
}

type treeParams struct {
	maxFeatures     int
	minSamplesSplit int
	rng             *rand.Rand
}

func growTree(X [][]float64, y []int, indices []int, params treeParams) *TreeNode {
	ones := 0
	for _, i := range indices {
		ones += y[i]
	}
	prob := float64(ones) / float64(len(indices))

	if ones == 0 || ones == len(indices) || len(indices) < params.minSamplesSplit {
		return &TreeNode{Leaf: true, Probability: prob}
	}

	feature, threshold, ok := bestSplit(X, y, indices, params)
	if !ok {
		return &TreeNode{Leaf: true, Probability: prob}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, Probability: prob}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(X, y, left, params),
		Right:     growTree(X, y, right, params),
	}
}

// bestSplit searches a random feature subset for the threshold with the
// lowest weighted Gini impurity. Thresholds are midpoints between
// consecutive distinct values, which keeps the search deterministic for a
// given random state.
func bestSplit(X [][]float64, y []int, indices []int, params treeParams) (int, float64, bool) {
	dims := len(X[0])
	features := params.rng.Perm(dims)
	if params.maxFeatures < len(features) {
		features = features[:params.maxFeatures]
	}

	type pair struct {
		value float64
		label int
	}
	pairs := make([]pair, len(indices))

	bestGini := 2.0
	bestFeature, bestThreshold := -1, 0.0
	found := false

	totalOnes := 0
	for _, i := range indices {
		totalOnes += y[i]
	}
	total := len(indices)

	for _, f := range features {
		for k, i := range indices {
			pairs[k] = pair{X[i][f], y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		leftCount, leftOnes := 0, 0
		for k := 0; k < len(pairs)-1; k++ {
			leftCount++
			leftOnes += pairs[k].label
			if pairs[k].value == pairs[k+1].value {
				continue
			}

			rightCount := total - leftCount
			rightOnes := totalOnes - leftOnes
			gini := weightedGini(leftCount, leftOnes, rightCount, rightOnes)
			if gini < bestGini {
				bestGini = gini
				bestFeature = f
				bestThreshold = (pairs[k].value + pairs[k+1].value) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func weightedGini(leftCount, leftOnes, rightCount, rightOnes int) float64 {
	gini := func(count, ones int) float64 {
		if count == 0 {
			return 0
		}
		p := float64(ones) / float64(count)
		return 2 * p * (1 - p)
	}
	total := float64(leftCount + rightCount)
	return float64(leftCount)/total*gini(leftCount, leftOnes) +
		float64(rightCount)/total*gini(rightCount, rightOnes)
}

func (n *TreeNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Probability
}
