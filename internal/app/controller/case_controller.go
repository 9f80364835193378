package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	apperrors "github.com/lexcase/lexcase-backend/internal/errors"
	"github.com/lexcase/lexcase-backend/internal/middleware"
)

type CaseController struct {
	caseService service.CaseService
	aiService   service.AIService
}

func NewCaseController(caseService service.CaseService, aiService service.AIService) *CaseController {
	return &CaseController{
		caseService: caseService,
		aiService:   aiService,
	}
}

type CreateCaseRequest struct {
	CaseNumber  string   `json:"case_number" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Parties     []string `json:"parties"`
}

type AttachDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Backend     string `json:"storage_backend"`
	StorageRef  string `json:"storage_ref" binding:"required"`
}

// Create opens a case for a verified user
// POST /api/v1/cases
func (ctrl *CaseController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Case number and title are required")
		return
	}

	created, err := ctrl.caseService.CreateCase(c.Request.Context(), userID, service.CreateCaseInput{
		CaseNumber:  req.CaseNumber,
		Title:       req.Title,
		Description: req.Description,
		Parties:     req.Parties,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotVerified):
			apperrors.Forbidden(c, "An approved verification is required to open cases")
		case errors.Is(err, service.ErrInvalidCaseInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Case number and title are required")
		default:
			log.Error("Failed to create case", err, map[string]interface{}{
				"user_id":     userID,
				"case_number": req.CaseNumber,
			})
			apperrors.ParseAndRespond(c, http.StatusConflict, err, "create case")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Case opened",
		"case":    created,
	})
}

// Get returns one case
// GET /api/v1/cases/:id
func (ctrl *CaseController) Get(c *gin.Context) {
	caseID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid case ID")
		return
	}

	found, err := ctrl.caseService.GetCase(caseID)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			apperrors.NotFound(c, apperrors.CaseNotFound, "Case not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch case")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case": found,
	})
}

// ListMine returns the authenticated user's cases
// GET /api/v1/cases
func (ctrl *CaseController) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	page, pageSize := parsePagination(c)

	cases, total, err := ctrl.caseService.ListMyCases(userID, page, pageSize)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list cases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// Close marks a case closed
// POST /api/v1/cases/:id/close
func (ctrl *CaseController) Close(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	caseID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid case ID")
		return
	}

	closed, err := ctrl.caseService.CloseCase(caseID, userID)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			apperrors.NotFound(c, apperrors.CaseNotFound, "Case not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update case")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Case closed",
		"case":    closed,
	})
}

// AttachDocument registers an uploaded document against a case
// POST /api/v1/cases/:id/documents
func (ctrl *CaseController) AttachDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	caseID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid case ID")
		return
	}

	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.DocumentInvalidMetadata, "File name and storage reference are required")
		return
	}

	record, err := ctrl.caseService.AttachDocument(c.Request.Context(), caseID, userID, service.RegisterDocumentInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Backend:     model.StorageBackendType(req.Backend),
		StorageRef:  req.StorageRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotVerified):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.VerificationNotApproved, "An approved verification is required to attach documents")
		case errors.Is(err, service.ErrCaseNotFound):
			apperrors.NotFound(c, apperrors.CaseNotFound, "Case not found")
		case errors.Is(err, service.ErrInvalidDocumentMeta):
			apperrors.BadRequest(c, apperrors.DocumentInvalidMetadata, "Invalid document metadata")
		case errors.Is(err, service.ErrUnsupportedBackend):
			apperrors.BadRequest(c, apperrors.DocumentUnsupportedBackend, "Unsupported storage backend")
		default:
			log.Error("Failed to attach document", err, map[string]interface{}{
				"case_id": caseID,
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register document")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document attached",
		"document": record,
	})
}

// ListDocuments returns a case's documents
// GET /api/v1/cases/:id/documents
func (ctrl *CaseController) ListDocuments(c *gin.Context) {
	caseID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid case ID")
		return
	}

	documents, err := ctrl.caseService.GetCaseDocuments(c.Request.Context(), caseID)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			apperrors.NotFound(c, apperrors.CaseNotFound, "Case not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
	})
}

// Summarize returns an AI-generated narrative of the case file
// GET /api/v1/cases/:id/summary
func (ctrl *CaseController) Summarize(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	caseID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid case ID")
		return
	}

	found, err := ctrl.caseService.GetCase(caseID)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			apperrors.NotFound(c, apperrors.CaseNotFound, "Case not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch case")
		return
	}

	documents, err := ctrl.caseService.GetCaseDocuments(c.Request.Context(), caseID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list documents")
		return
	}

	summary, err := ctrl.aiService.SummarizeCase(c.Request.Context(), found, documents)
	if err != nil {
		log.Error("Failed to summarize case", err, map[string]interface{}{
			"case_id": caseID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Summary generation is currently unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case_id": caseID,
		"summary": summary,
	})
}
