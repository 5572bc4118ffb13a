package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealscan/internal/service"
)

// AnalysisHandler serves the meal photo analysis endpoint.
type AnalysisHandler struct {
	analysisSvc service.AnalysisService
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(analysisSvc service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisSvc: analysisSvc}
}

// Analyze handles POST /api/v1/meals/analyze. Multipart form: "image"
// (required file) and "description" (optional free text).
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_IMAGE", "multipart field 'image' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_IMAGE", "could not read uploaded image")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_IMAGE", "could not read uploaded image")
		return
	}

	description := c.PostForm("description")

	out, err := h.analysisSvc.AnalyzeUpload(c.Request.Context(), data, description)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}
