package preprocess

import (
	"image"
	"math"

	"github.com/nfnt/resize"

	apperrors "go-fracture-classifier/internal/errors"
)

// Canny hysteresis thresholds. Fixed: the preprocessing chain has no
// call-time tunables besides the configured image size.
const (
	cannyLowThreshold  = 50.0
	cannyHighThreshold = 150.0
	gaussianKernelSize = 5
)

// Stages holds every intermediate representation the chain computes. The
// inference pipeline hands these to whatever renders the side-by-side
// visualization; nothing in this package draws anything.
type Stages struct {
	Original image.Image
	Gray     *image.Gray
	Smoothed *image.Gray
	Edges    *image.Gray
}

// Preprocessor turns a raw decoded image into a binary edge map of the
// configured fixed size.
type Preprocessor interface {
	// Preprocess runs the full chain and returns the edge map.
	Preprocess(img image.Image) (*image.Gray, error)
	// PreprocessStages runs the full chain and keeps the intermediates.
	PreprocessStages(img image.Image) (*Stages, error)
	// Size returns the configured square edge-map size.
	Size() int
}

type edgePreprocessor struct {
	size int
}

// NewPreprocessor creates the preprocessing chain for the given square size.
func NewPreprocessor(size int) Preprocessor {
	return &edgePreprocessor{size: size}
}

func (p *edgePreprocessor) Size() int {
	return p.size
}

func (p *edgePreprocessor) Preprocess(img image.Image) (*image.Gray, error) {
	stages, err := p.PreprocessStages(img)
	if err != nil {
		return nil, err
	}
	return stages.Edges, nil
}

func (p *edgePreprocessor) PreprocessStages(img image.Image) (*Stages, error) {
	if img == nil {
		return nil, apperrors.NewValidationError("nil image", nil)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, apperrors.NewValidationError("empty image", nil)
	}

	// Fixed-size resize. Bilinear sampling averages the source neighbourhood
	// and is deterministic for a given input, which is what the downscale
	// step needs.
	resized := resize.Resize(uint(p.size), uint(p.size), img, resize.Bilinear)

	gray := toGray(resized)
	equalized := equalizeHistogram(gray)
	smoothed := gaussianBlur(equalized, gaussianKernelSize)
	edges := canny(smoothed, cannyLowThreshold, cannyHighThreshold)

	return &Stages{
		Original: resized,
		Gray:     gray,
		Smoothed: smoothed,
		Edges:    edges,
	}, nil
}

// toGray converts to single-channel grayscale with the usual luminance
// weighting of the RGB channels.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			if lum > 255 {
				lum = 255
			}
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, colorGray(uint8(lum+0.5)))
		}
	}
	return gray
}

// equalizeHistogram normalizes global contrast so varying X-ray exposure
// levels land in a comparable intensity range.
func equalizeHistogram(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return gray
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	// Cumulative distribution, anchored at the first occupied bin so the
	// darkest present intensity maps to 0.
	var cdf [256]int
	running := 0
	for v := 0; v < 256; v++ {
		running += hist[v]
		cdf[v] = running
	}
	cdfMin := 0
	for v := 0; v < 256; v++ {
		if hist[v] > 0 {
			cdfMin = cdf[v]
			break
		}
	}

	var lut [256]uint8
	denom := total - cdfMin
	if denom <= 0 {
		// Uniform image: identity mapping.
		for v := 0; v < 256; v++ {
			lut[v] = uint8(v)
		}
	} else {
		for v := 0; v < 256; v++ {
			scaled := float64(cdf[v]-cdfMin) / float64(denom) * 255.0
			if scaled < 0 {
				scaled = 0
			}
			lut[v] = uint8(scaled + 0.5)
		}
	}

	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray(x, y, colorGray(lut[gray.GrayAt(x, y).Y]))
		}
	}
	return out
}

// gaussianBlur applies a separable Gaussian with sigma derived from the
// kernel size (0.3*((k-1)*0.5 - 1) + 0.8), the convention the reference
// smoothing step uses when sigma is left to the kernel.
func gaussianBlur(gray *image.Gray, ksize int) *image.Gray {
	sigma := 0.3*((float64(ksize)-1)*0.5-1) + 0.8
	half := ksize / 2

	kernel := make([]float64, ksize)
	sum := 0.0
	for i := 0; i < ksize; i++ {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Horizontal pass into a float buffer, then vertical pass back to bytes.
	// Borders replicate the nearest edge pixel.
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -half; k <= half; k++ {
				acc += float64(gray.GrayAt(clamp(x+k, 0, w-1), y).Y) * kernel[k+half]
			}
			tmp[y*w+x] = acc
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -half; k <= half; k++ {
				acc += tmp[clamp(y+k, 0, h-1)*w+x] * kernel[k+half]
			}
			if acc > 255 {
				acc = 255
			}
			if acc < 0 {
				acc = 0
			}
			out.SetGray(x, y, colorGray(uint8(acc+0.5)))
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
