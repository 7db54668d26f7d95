package texture

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func uniformGray(size int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func checkerboard(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestExtractVectorIsFinite(t *testing.T) {
	e := NewExtractor()
	vector := e.Extract(checkerboard(32))

	for d, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Dimension %d is not finite: %f", d, v)
		}
	}
}

func TestExtractUniformImage(t *testing.T) {
	e := NewExtractor()
	vector := e.Extract(uniformGray(32, 0))

	// All co-occurring pairs are (0,0): no contrast, perfect homogeneity,
	// a single occupied cell with probability 1, and correlation pinned to 1
	// by the zero-variance convention.
	expected := [5]float64{0, 0, 1, 1, 1}
	names := [5]string{"contrast", "dissimilarity", "homogeneity", "energy", "correlation"}
	for d := range expected {
		if math.Abs(vector[d]-expected[d]) > 1e-12 {
			t.Errorf("Expected %s = %g for uniform image, got %g", names[d], expected[d], vector[d])
		}
	}
}

func TestExtractCheckerboardHasContrast(t *testing.T) {
	e := NewExtractor()
	vector := e.Extract(checkerboard(32))

	if vector[0] <= 0 {
		t.Errorf("Expected positive contrast for checkerboard, got %g", vector[0])
	}
	if vector[1] <= 0 {
		t.Errorf("Expected positive dissimilarity for checkerboard, got %g", vector[1])
	}
	if vector[2] >= 1 {
		t.Errorf("Expected homogeneity < 1 for checkerboard, got %g", vector[2])
	}
	if vector[3] >= 1 {
		t.Errorf("Expected energy < 1 for checkerboard, got %g", vector[3])
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor()
	img := checkerboard(32)

	first := e.Extract(img)
	second := e.Extract(img)
	if first != second {
		t.Errorf("Expected identical vectors for identical input: %v vs %v", first, second)
	}
}

func TestExtractDistinguishesTextures(t *testing.T) {
	e := NewExtractor()

	// Half-and-half split has long runs of equal neighbours; a checkerboard
	// flips at every step. Their descriptors must differ.
	split := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 16; x < 32; x++ {
			split.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	a := e.Extract(split)
	b := e.Extract(checkerboard(32))
	if a == b {
		t.Error("Expected different descriptors for different textures")
	}
	if a[0] >= b[0] {
		t.Errorf("Expected lower contrast for the split image (%g) than the checkerboard (%g)", a[0], b[0])
	}
}

func TestAccumulateNormalized(t *testing.T) {
	glcm := make([]float64, grayLevels*grayLevels)
	accumulate(glcm, checkerboard(8), 0, 1)

	sum := 0.0
	for _, v := range glcm {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Expected normalized matrix summing to 1, got %g", sum)
	}
}
