package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Aashish23092/workpass-ocr/dto"
	"github.com/Aashish23092/workpass-ocr/service"
	"github.com/Aashish23092/workpass-ocr/store"
	"github.com/Aashish23092/workpass-ocr/utils"
	"github.com/gin-gonic/gin"
)

// Extractor is the part of service.ExtractionService the HTTP layer uses
type Extractor interface {
	ExtractSubmission(ctx context.Context, uploads []dto.Upload, hint dto.DocumentTypeHint) (*dto.SubmissionResponse, error)
	ExtractText(texts []string, hint dto.DocumentTypeHint) *dto.SubmissionResponse
	WorkerProfile(fin string) (*dto.WorkerProfile, error)
	ExportWorkers() ([]byte, error)
}

// ExtractionHandler handles document extraction and worker lookup requests
type ExtractionHandler struct {
	extractor Extractor
	logger    *slog.Logger
}

// NewExtractionHandler creates a new ExtractionHandler instance
func NewExtractionHandler(extractor Extractor, logger *slog.Logger) *ExtractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionHandler{extractor: extractor, logger: logger}
}

// Register mounts the routes on an /api/v1 group
func (h *ExtractionHandler) Register(api *gin.RouterGroup) {
	documents := api.Group("/documents")
	{
		documents.POST("/extract", h.ExtractDocuments)
		documents.POST("/parse", h.ParseText)
	}
	workers := api.Group("/workers")
	{
		workers.GET("/export", h.ExportWorkers)
		workers.GET("/:fin", h.GetWorker)
	}
}

// ExtractDocuments handles POST /documents/extract. Files are merged in
// the order they were uploaded.
func (h *ExtractionHandler) ExtractDocuments(c *gin.Context) {
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["file"]
	}
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "At least one file is required", dto.ErrNoFiles)
		return
	}

	uploads := make([]dto.Upload, 0, len(files))
	for _, file := range files {
		mimeType := file.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = inferMimeType(file.Filename)
		}
		if !isValidMimeType(mimeType) {
			h.sendError(c, http.StatusBadRequest, "Invalid file type", dto.ErrUnsupportedFileType)
			return
		}

		reader, err := file.Open()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to open uploaded file", err)
			return
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, "Failed to read file data", err)
			return
		}

		uploads = append(uploads, dto.Upload{Filename: file.Filename, MimeType: mimeType, Data: data})
	}

	hint := utils.ParseHint(c.PostForm("doc_type"))
	h.logger.Info("extraction request", "files", len(uploads), "doc_type", hint)

	result, err := h.extractor.ExtractSubmission(c.Request.Context(), uploads, hint)
	if err != nil {
		h.sendError(c, statusFor(err), "Failed to extract document", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ParseText handles POST /documents/parse for callers that run OCR themselves
func (h *ExtractionHandler) ParseText(c *gin.Context) {
	var req dto.ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c.JSON(http.StatusOK, h.extractor.ExtractText(req.Texts, utils.ParseHint(req.DocType)))
}

// GetWorker handles GET /workers/:fin
func (h *ExtractionHandler) GetWorker(c *gin.Context) {
	profile, err := h.extractor.WorkerProfile(c.Param("fin"))
	if err != nil {
		h.sendError(c, statusFor(err), "Worker lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ExportWorkers handles GET /workers/export
func (h *ExtractionHandler) ExportWorkers(c *gin.Context) {
	data, err := h.extractor.ExportWorkers()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Export failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="workers.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dto.ErrNoFiles), errors.Is(err, dto.ErrUnsupportedFileType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNoIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// sendError sends a structured error response
func (h *ExtractionHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Error(message, "status", statusCode, "error", err)
	}

	code := "EXTRACTION_FAILED"
	switch statusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		code = "INVALID_REQUEST"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

// isValidMimeType checks if the MIME type is supported
func isValidMimeType(mimeType string) bool {
	validTypes := []string{
		"application/pdf",
		"image/png",
		"image/jpeg",
		"image/jpg",
		"image/heic",
		"image/heif",
	}

	mimeType = strings.ToLower(mimeType)
	for _, valid := range validTypes {
		if strings.Contains(mimeType, valid) {
			return true
		}
	}
	return false
}

// inferMimeType infers MIME type from file extension
func inferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".heic"):
		return "image/heic"
	case strings.HasSuffix(lower, ".heif"):
		return "image/heif"
	}
	return ""
}
