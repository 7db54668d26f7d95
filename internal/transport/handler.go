// Package transport is the HTTP surface of the classifier: request binding,
// error-to-status mapping and request logging around the service layer.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-fracture-classifier/internal/config"
	apperrors "go-fracture-classifier/internal/errors"
	"go-fracture-classifier/internal/logger"
	"go-fracture-classifier/internal/service"
)

// ClassificationRequest is the body of POST /classify.
type ClassificationRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ErrorResponse is the JSON shape of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the gin router with all routes and middleware attached.
func NewHandler(svc service.ClassificationService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/classify", classifyImage(svc, cfg))
	r.POST("/model/reload", reloadModel(svc))

	return r
}

func classifyImage(svc service.ClassificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing classification request")

		var req ClassificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := svc.ValidateImageURL(req.URL); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Invalid image URL")
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}

		response, err := svc.ClassifyImage(ctx, req.URL)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = apperrors.NewTimeoutError("classification timed out", err)
			}
			logger.WithError(err).WithFields(logrus.Fields{
				"url": req.URL,
				"ip":  c.ClientIP(),
			}).Error("Classification failed")
			respondError(c, apperrors.GetStatusCode(err), "classification failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"prediction":         response.Result.Prediction,
			"confidence":         response.Result.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Classification completed")

		c.JSON(http.StatusOK, response)
	}
}

func reloadModel(svc service.ClassificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ReloadModel(c.Request.Context()); err != nil {
			logger.WithError(err).Error("Model reload failed")
			respondError(c, apperrors.GetStatusCode(err), "model reload failed", err)
			return
		}
		logger.Info("Model artifacts reloaded")
		c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
