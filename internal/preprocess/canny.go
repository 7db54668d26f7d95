package preprocess

import (
	"image"
	"image/color"
	"math"
)

const (
	edgeNone   = 0
	edgeWeak   = 128
	edgeStrong = 255
)

func colorGray(v uint8) color.Gray {
	return color.Gray{Y: v}
}

// canny extracts thin connected edge contours: Sobel gradients, non-maximum
// suppression along the gradient direction, then double-threshold hysteresis.
// The output is binary: 255 on edges, 0 elsewhere.
func canny(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	magnitude := make([]float64, w*h)
	direction := make([]float64, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
				-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
				-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)

			gy := -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
				1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)

			magnitude[y*w+x] = math.Sqrt(float64(gx*gx + gy*gy))
			direction[y*w+x] = math.Atan2(float64(gy), float64(gx))
		}
	}

	// Non-maximum suppression: keep a pixel only if it dominates both
	// neighbours along its quantized gradient direction.
	suppressed := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := magnitude[y*w+x]
			if m == 0 {
				continue
			}

			angle := direction[y*w+x] * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}

			var n1, n2 float64
			switch {
			case angle < 22.5 || angle >= 157.5: // horizontal gradient
				n1 = magnitude[y*w+x-1]
				n2 = magnitude[y*w+x+1]
			case angle < 67.5: // diagonal /
				n1 = magnitude[(y-1)*w+x+1]
				n2 = magnitude[(y+1)*w+x-1]
			case angle < 112.5: // vertical gradient
				n1 = magnitude[(y-1)*w+x]
				n2 = magnitude[(y+1)*w+x]
			default: // diagonal \
				n1 = magnitude[(y-1)*w+x-1]
				n2 = magnitude[(y+1)*w+x+1]
			}

			if m >= n1 && m >= n2 {
				suppressed[y*w+x] = m
			}
		}
	}

	// Double threshold into none/weak/strong.
	classes := make([]uint8, w*h)
	for i, m := range suppressed {
		switch {
		case m >= high:
			classes[i] = edgeStrong
		case m >= low:
			classes[i] = edgeWeak
		}
	}

	// Hysteresis: weak pixels survive only when connected (8-neighbourhood)
	// to a strong pixel, directly or through other promoted weak pixels.
	var stack []int
	for i, c := range classes {
		if c == edgeStrong {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if classes[j] == edgeWeak {
					classes[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if classes[y*w+x] == edgeStrong {
				out.SetGray(x, y, colorGray(255))
			}
		}
	}
	return out
}
