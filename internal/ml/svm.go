package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	apperrors "go-fracture-classifier/internal/errors"
)

// SVM is a kernel support-vector classifier with an RBF kernel, trained by
// sequential minimal optimization. Probability estimates come from Platt
// scaling fitted on the training decision values. A zero Gamma means
// "scale": 1 / (dims * variance of the training matrix), resolved at fit.
type SVM struct {
	C     float64
	Gamma float64
	Seed  int64

	SupportVectors [][]float64
	Coefficients   []float64 // alpha_i * y_i per support vector
	Bias           float64
	PlattA         float64
	PlattB         float64
	Trained        bool
}

// NewSVM creates an untrained RBF-kernel classifier.
func NewSVM(c float64, seed int64) *SVM {
	return &SVM{C: c, Seed: seed}
}

func (s *SVM) Name() string {
	return "svm"
}

func rbfKernel(a, b []float64, gamma float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Exp(-gamma * sum)
}

// Fit trains by simplified SMO (tolerance 1e-3) and then fits the Platt
// sigmoid over the resulting decision values.
func (s *SVM) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n != len(y) {
		return apperrors.NewValidationError("svm fit requires aligned training data", nil)
	}
	// SMO pairs each working example with a second one, so one sample is as
	// unfittable as none.
	if n < 2 {
		return apperrors.NewValidationError("svm fit requires at least two training samples", nil)
	}
	dims := len(X[0])

	if s.Gamma == 0 {
		s.Gamma = scaleGamma(X, dims)
	}

	// Labels as -1/+1 for the optimization.
	t := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			t[i] = 1
		} else {
			t[i] = -1
		}
	}

	alpha := make([]float64, n)
	b := 0.0
	rng := rand.New(rand.NewSource(s.Seed))

	// Kernel rows are memoized for moderate corpus sizes; beyond that they
	// are recomputed on demand to bound memory.
	var kernelCache [][]float64
	if n <= 2000 {
		kernelCache = make([][]float64, n)
	}
	kernel := func(i, j int) float64 {
		if kernelCache == nil {
			return rbfKernel(X[i], X[j], s.Gamma)
		}
		if kernelCache[i] == nil {
			row := make([]float64, n)
			for k := 0; k < n; k++ {
				row[k] = rbfKernel(X[i], X[k], s.Gamma)
			}
			kernelCache[i] = row
		}
		return kernelCache[i][j]
	}
	decision := func(i int) float64 {
		sum := b
		for k := 0; k < n; k++ {
			if alpha[k] != 0 {
				sum += alpha[k] * t[k] * kernel(k, i)
			}
		}
		return sum
	}

	const (
		tol       = 1e-3
		maxPasses = 5
		maxIter   = 200
	)
	passes := 0
	for iter := 0; passes < maxPasses && iter < maxIter; iter++ {
		numChanged := 0
		for i := 0; i < n; i++ {
			ei := decision(i) - t[i]
			if (t[i]*ei < -tol && alpha[i] < s.C) || (t[i]*ei > tol && alpha[i] > 0) {
				j := rng.Intn(n - 1)
				if j >= i {
					j++
				}
				ej := decision(j) - t[j]

				aiOld, ajOld := alpha[i], alpha[j]
				var lo, hi float64
				if t[i] != t[j] {
					lo = math.Max(0, ajOld-aiOld)
					hi = math.Min(s.C, s.C+ajOld-aiOld)
				} else {
					lo = math.Max(0, aiOld+ajOld-s.C)
					hi = math.Min(s.C, aiOld+ajOld)
				}
				if lo == hi {
					continue
				}

				eta := 2*kernel(i, j) - kernel(i, i) - kernel(j, j)
				if eta >= 0 {
					continue
				}

				aj := ajOld - t[j]*(ei-ej)/eta
				if aj > hi {
					aj = hi
				} else if aj < lo {
					aj = lo
				}
				if math.Abs(aj-ajOld) < 1e-5 {
					continue
				}
				ai := aiOld + t[i]*t[j]*(ajOld-aj)
				alpha[i], alpha[j] = ai, aj

				b1 := b - ei - t[i]*(ai-aiOld)*kernel(i, i) - t[j]*(aj-ajOld)*kernel(i, j)
				b2 := b - ej - t[i]*(ai-aiOld)*kernel(i, j) - t[j]*(aj-ajOld)*kernel(j, j)
				switch {
				case ai > 0 && ai < s.C:
					b = b1
				case aj > 0 && aj < s.C:
					b = b2
				default:
					b = (b1 + b2) / 2
				}
				numChanged++
			}
		}
		if numChanged == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	// Keep only the support vectors.
	s.SupportVectors = s.SupportVectors[:0]
	s.Coefficients = s.Coefficients[:0]
	for i := 0; i < n; i++ {
		if alpha[i] > 1e-8 {
			sv := make([]float64, dims)
			copy(sv, X[i])
			s.SupportVectors = append(s.SupportVectors, sv)
			s.Coefficients = append(s.Coefficients, alpha[i]*t[i])
		}
	}
	s.Bias = b
	s.Trained = true

	decisions := make([]float64, n)
	for i := 0; i < n; i++ {
		decisions[i] = s.decisionValue(X[i])
	}
	s.PlattA, s.PlattB = fitPlattSigmoid(decisions, y)
	return nil
}

func (s *SVM) decisionValue(x []float64) float64 {
	sum := s.Bias
	for i, sv := range s.SupportVectors {
		sum += s.Coefficients[i] * rbfKernel(sv, x, s.Gamma)
	}
	return sum
}

// PredictProba maps the decision value through the fitted Platt sigmoid.
func (s *SVM) PredictProba(x []float64) float64 {
	fApB := s.decisionValue(x)*s.PlattA + s.PlattB
	if fApB >= 0 {
		return math.Exp(-fApB) / (1 + math.Exp(-fApB))
	}
	return 1 / (1 + math.Exp(fApB))
}

func scaleGamma(X [][]float64, dims int) float64 {
	all := make([]float64, 0, len(X)*dims)
	for _, row := range X {
		all = append(all, row...)
	}
	variance := stat.PopVariance(all, nil)
	if variance <= 0 {
		return 1 / float64(dims)
	}
	return 1 / (float64(dims) * variance)
}

// fitPlattSigmoid fits P(y=1|f) = 1/(1+exp(A*f+B)) by the regularized
// Newton iteration of Lin, Weng and Keerthi.
func fitPlattSigmoid(decisions []float64, y []int) (float64, float64) {
	n := len(decisions)
	prior1, prior0 := 0, 0
	for _, label := range y {
		if label == 1 {
			prior1++
		} else {
			prior0++
		}
	}

	hiTarget := (float64(prior1) + 1) / (float64(prior1) + 2)
	loTarget := 1 / (float64(prior0) + 2)
	targets := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	a := 0.0
	b := math.Log((float64(prior0) + 1) / (float64(prior1) + 1))

	objective := func(a, b float64) float64 {
		f := 0.0
		for i, dec := range decisions {
			fApB := dec*a + b
			if fApB >= 0 {
				f += targets[i]*fApB + math.Log1p(math.Exp(-fApB))
			} else {
				f += (targets[i]-1)*fApB + math.Log1p(math.Exp(fApB))
			}
		}
		return f
	}

	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
	)
	fval := objective(a, b)
	for iter := 0; iter < maxIter; iter++ {
		h11, h22 := sigma, sigma
		h21, g1, g2 := 0.0, 0.0, 0.0
		for i, dec := range decisions {
			fApB := dec*a + b
			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}
			d2 := p * q
			h11 += dec * dec * d2
			h22 += d2
			h21 += dec * d2
			d1 := targets[i] - p
			g1 += dec * d1
			g2 += d1
		}
		if math.Abs(g1) < 1e-5 && math.Abs(g2) < 1e-5 {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		stepSize := 1.0
		for stepSize >= minStep {
			newA := a + stepSize*dA
			newB := b + stepSize*dB
			newF := objective(newA, newB)
			if newF < fval+1e-4*stepSize*gd {
				a, b, fval = newA, newB, newF
				break
			}
			stepSize /= 2
		}
		if stepSize < minStep {
			break
		}
	}
	return a, b
}
