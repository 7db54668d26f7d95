// Package texture computes gray-level co-occurrence matrix (GLCM) descriptors
// from edge maps. The descriptor is a compact, rotation-blended summary:
// every property is averaged over three pixel distances and four angles, so a
// fracture line scores the same regardless of its orientation.
package texture

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"go-fracture-classifier/pkg/models"
)

const grayLevels = 256

// distances and angles define the 12 co-occurrence sub-matrices. Offsets
// follow the usual row/column convention: 0° looks right, 90° looks up.
var (
	distances = []int{1, 2, 3}
	angles    = []struct{ dRow, dCol int }{
		{0, 1},   // 0 deg
		{-1, 1},  // 45 deg
		{-1, 0},  // 90 deg
		{-1, -1}, // 135 deg
	}
)

// Extractor computes the fixed 5-dimensional texture descriptor of an edge
// map: contrast, dissimilarity, homogeneity, energy, correlation.
type Extractor interface {
	Extract(edges *image.Gray) models.FeatureVector
}

type glcmExtractor struct{}

// NewExtractor creates a GLCM feature extractor.
func NewExtractor() Extractor {
	return &glcmExtractor{}
}

// Extract is fully deterministic: the same edge map always produces the same
// vector, bit for bit.
func (e *glcmExtractor) Extract(edges *image.Gray) models.FeatureVector {
	n := len(distances) * len(angles)
	contrast := make([]float64, 0, n)
	dissimilarity := make([]float64, 0, n)
	homogeneity := make([]float64, 0, n)
	energy := make([]float64, 0, n)
	correlation := make([]float64, 0, n)

	glcm := make([]float64, grayLevels*grayLevels)
	for _, d := range distances {
		for _, a := range angles {
			accumulate(glcm, edges, d*a.dRow, d*a.dCol)
			p := properties(glcm)
			contrast = append(contrast, p.contrast)
			dissimilarity = append(dissimilarity, p.dissimilarity)
			homogeneity = append(homogeneity, p.homogeneity)
			energy = append(energy, p.energy)
			correlation = append(correlation, p.correlation)
		}
	}

	return models.FeatureVector{
		stat.Mean(contrast, nil),
		stat.Mean(dissimilarity, nil),
		stat.Mean(homogeneity, nil),
		stat.Mean(energy, nil),
		stat.Mean(correlation, nil),
	}
}

// accumulate fills glcm with the symmetric, normalized co-occurrence
// probabilities for one (distance, angle) offset. The buffer is reused
// between calls.
func accumulate(glcm []float64, edges *image.Gray, dRow, dCol int) {
	for i := range glcm {
		glcm[i] = 0
	}

	bounds := edges.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	total := 0.0
	for y := 0; y < h; y++ {
		ny := y + dRow
		if ny < 0 || ny >= h {
			continue
		}
		for x := 0; x < w; x++ {
			nx := x + dCol
			if nx < 0 || nx >= w {
				continue
			}
			i := int(edges.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			j := int(edges.GrayAt(bounds.Min.X+nx, bounds.Min.Y+ny).Y)
			// Symmetric accumulation: each pair counts in both directions.
			glcm[i*grayLevels+j]++
			glcm[j*grayLevels+i]++
			total += 2
		}
	}

	if total > 0 {
		for i := range glcm {
			glcm[i] /= total
		}
	}
}

type glcmProperties struct {
	contrast      float64
	dissimilarity float64
	homogeneity   float64
	energy        float64
	correlation   float64
}

func properties(glcm []float64) glcmProperties {
	var p glcmProperties
	var asm float64
	var meanI, meanJ float64

	for i := 0; i < grayLevels; i++ {
		row := glcm[i*grayLevels : (i+1)*grayLevels]
		for j, v := range row {
			if v == 0 {
				continue
			}
			d := float64(i - j)
			p.contrast += v * d * d
			p.dissimilarity += v * math.Abs(d)
			p.homogeneity += v / (1 + d*d)
			asm += v * v
			meanI += v * float64(i)
			meanJ += v * float64(j)
		}
	}
	p.energy = math.Sqrt(asm)

	var varI, varJ, cov float64
	for i := 0; i < grayLevels; i++ {
		row := glcm[i*grayLevels : (i+1)*grayLevels]
		for j, v := range row {
			if v == 0 {
				continue
			}
			di := float64(i) - meanI
			dj := float64(j) - meanJ
			varI += v * di * di
			varJ += v * dj * dj
			cov += v * di * dj
		}
	}

	// A uniform sub-matrix has zero variance; correlation is defined as 1
	// there, matching the behaviour on constant input.
	if varI <= 0 || varJ <= 0 {
		p.correlation = 1
	} else {
		p.correlation = cov / math.Sqrt(varI*varJ)
	}
	return p
}
