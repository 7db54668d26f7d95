package models

import "time"

// Label is the binary classification target: 1 = fractured, 0 = not fractured.
type Label int

const (
	LabelNotFractured Label = 0
	LabelFractured    Label = 1
)

// String returns the human-readable form used by every external interface.
func (l Label) String() string {
	if l == LabelFractured {
		return "Fractured"
	}
	return "Not Fractured"
}

// FeatureDimensions is the fixed length of every texture feature vector:
// contrast, dissimilarity, homogeneity, energy, correlation, in that order.
const FeatureDimensions = 5

// FeatureVector is the GLCM texture descriptor of one edge map.
type FeatureVector [FeatureDimensions]float64

// Floats returns the vector as a slice, for the statistics helpers.
func (v FeatureVector) Floats() []float64 {
	return v[:]
}

// Dataset is an aligned pair of feature vectors and labels. Row i of Vectors
// is described by row i of Labels.
type Dataset struct {
	Vectors []FeatureVector
	Labels  []Label
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.Vectors)
}

// CountLabel returns how many samples carry the given label.
func (d Dataset) CountLabel(l Label) int {
	n := 0
	for _, v := range d.Labels {
		if v == l {
			n++
		}
	}
	return n
}

// ClassificationResult is the outcome of classifying a single image.
type ClassificationResult struct {
	Label      Label     `json:"-"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
	// Per-model class-1 probabilities that were soft-voted into Confidence.
	ModelProbabilities map[string]float64 `json:"model_probabilities,omitempty"`
	Features           []float64          `json:"features,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
	ProcessingTimeSec  float64            `json:"processing_time_sec"`
}

// ClassificationResponse is the transport-level response of the API.
type ClassificationResponse struct {
	ImageURL  string               `json:"image_url,omitempty"`
	ImagePath string               `json:"image_path,omitempty"`
	Result    ClassificationResult `json:"result"`
}
