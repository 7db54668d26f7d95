package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-fracture-classifier/internal/config"
	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/pkg/models"
)

type stubService struct {
	response *models.ClassificationResponse
	err      error
	reloaded bool
}

func (s *stubService) ClassifyImage(_ context.Context, imageURL string) (*models.ClassificationResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.response
	resp.ImageURL = imageURL
	return &resp, nil
}

func (s *stubService) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return apperrors.NewValidationError("empty URL", nil)
	}
	return nil
}

func (s *stubService) ReloadModel(context.Context) error {
	s.reloaded = true
	return s.err
}

func testHandlerConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
}

func TestHealthCheck(t *testing.T) {
	handler := NewHandler(&stubService{}, testHandlerConfig())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("Expected status available, got %v", body["status"])
	}
}

func TestClassifySuccess(t *testing.T) {
	svc := &stubService{
		response: &models.ClassificationResponse{
			Result: models.ClassificationResult{
				Prediction: "Fractured",
				Confidence: 0.91,
			},
		},
	}
	handler := NewHandler(svc, testHandlerConfig())

	body := bytes.NewBufferString(`{"url": "https://example.com/xray.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.ClassificationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Result.Prediction != "Fractured" {
		t.Errorf("Expected prediction Fractured, got %q", resp.Result.Prediction)
	}
	if resp.ImageURL != "https://example.com/xray.png" {
		t.Errorf("Expected echoed image URL, got %q", resp.ImageURL)
	}
}

func TestClassifyInvalidBody(t *testing.T) {
	handler := NewHandler(&stubService{}, testHandlerConfig())

	req := httptest.NewRequest(http.MethodPost, "/classify", bytes.NewBufferString(`{"url": 12}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", w.Code)
	}
}

func TestClassifyMissingModel(t *testing.T) {
	svc := &stubService{
		err: apperrors.NewArtifactNotFoundError("artifacts missing", nil),
	}
	handler := NewHandler(svc, testHandlerConfig())

	body := bytes.NewBufferString(`{"url": "https://example.com/xray.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/classify", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// The artifact_not_found status travels through untouched.
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 when artifacts are missing, got %d", w.Code)
	}
}

func TestModelReload(t *testing.T) {
	svc := &stubService{}
	handler := NewHandler(svc, testHandlerConfig())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/model/reload", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !svc.reloaded {
		t.Error("Expected ReloadModel to be called")
	}
}
