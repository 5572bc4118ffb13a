package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealscan/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error
// codes. A fatal provider rejection and an exhausted retry budget both
// surface as ANALYSIS_FAILED: the one user-visible failure mode is "AI
// analysis could not be performed".
func MapDomainError(err error) (status int, code, msg string) {
	var provErr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrEmptyImage):
		return http.StatusBadRequest, "EMPTY_IMAGE", "image data is empty"
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "unsupported image type; allowed: jpeg, png, webp"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds maximum allowed size"
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway, "ANALYSIS_FAILED", "AI analysis could not be performed"
	case errors.As(err, &provErr):
		return http.StatusBadGateway, "ANALYSIS_FAILED", "AI analysis could not be performed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] %s: %v", requestID, code, err)
	}
	RespondError(c, status, code, msg)
}
