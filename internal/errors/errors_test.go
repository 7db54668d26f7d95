package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		err        *AppError
		errType    ErrorType
		statusCode int
	}{
		{NewValidationError("m", nil), ErrorTypeValidation, http.StatusBadRequest},
		{NewDecodeError("m", nil), ErrorTypeDecode, http.StatusUnprocessableEntity},
		{NewMissingLabelDirectoryError("m", nil), ErrorTypeMissingLabelDirectory, http.StatusNotFound},
		{NewArtifactNotFoundError("m", nil), ErrorTypeArtifactNotFound, http.StatusConflict},
		{NewDegenerateScalingError("m", nil), ErrorTypeDegenerateScaling, http.StatusUnprocessableEntity},
		{NewNetworkError("m", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{NewTimeoutError("m", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{NewInternalError("m", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, c := range cases {
		if c.err.Type != c.errType {
			t.Errorf("Expected type %s, got %s", c.errType, c.err.Type)
		}
		if c.err.StatusCode != c.statusCode {
			t.Errorf("%s: expected status %d, got %d", c.errType, c.statusCode, c.err.StatusCode)
		}
		if !IsType(c.err, c.errType) {
			t.Errorf("IsType failed for %s", c.errType)
		}
		if GetStatusCode(c.err) != c.statusCode {
			t.Errorf("GetStatusCode failed for %s", c.errType)
		}
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := NewDegenerateScalingError("zero variance", nil)
	wrapped := fmt.Errorf("training: %w", inner)

	if !IsType(wrapped, ErrorTypeDegenerateScaling) {
		t.Error("Expected IsType to see through fmt.Errorf wrapping")
	}
	if IsType(wrapped, ErrorTypeDecode) {
		t.Error("Expected IsType to reject a different type")
	}
	if GetStatusCode(wrapped) != http.StatusUnprocessableEntity {
		t.Errorf("Expected wrapped status 422, got %d", GetStatusCode(wrapped))
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := NewDecodeError("failed to decode image", cause)

	if got := err.Error(); got != "decode: failed to decode image (caused by: underlying)" {
		t.Errorf("Unexpected error string: %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
}
