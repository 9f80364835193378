package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	apperrors "github.com/lexcase/lexcase-backend/internal/errors"
	"github.com/lexcase/lexcase-backend/internal/middleware"
)

type DocumentController struct {
	documentService service.DocumentService
}

func NewDocumentController(documentService service.DocumentService) *DocumentController {
	return &DocumentController{
		documentService: documentService,
	}
}

// Get returns one document's metadata
// GET /api/v1/documents/:id
func (ctrl *DocumentController) Get(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid document ID")
		return
	}

	record, err := ctrl.documentService.GetByID(documentID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			apperrors.NotFound(c, apperrors.DocumentNotFound, "Document not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": record,
	})
}

// Download streams the document bytes from its storage backend
// GET /api/v1/documents/:id/download
func (ctrl *DocumentController) Download(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid document ID")
		return
	}

	record, data, err := ctrl.documentService.Download(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.DocumentNotFound, "Document not found")
		case errors.Is(err, service.ErrUnsupportedBackend):
			apperrors.BadRequest(c, apperrors.DocumentUnsupportedBackend, "Unsupported storage backend")
		default:
			log.Error("Failed to download document", err, map[string]interface{}{
				"document_id": documentID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch document")
		}
		return
	}

	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", `attachment; filename="`+record.FileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}
