package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	apperrors "github.com/lexcase/lexcase-backend/internal/errors"
	"github.com/lexcase/lexcase-backend/internal/middleware"
)

type VerificationController struct {
	verificationService service.VerificationService
}

func NewVerificationController(verificationService service.VerificationService) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
	}
}

type DecideRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=approve reject"`
	Reason  string `json:"reason"`
}

// Submit opens a new verification request for the authenticated user
// POST /api/v1/verifications
func (ctrl *VerificationController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	request, err := ctrl.verificationService.Submit(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrDuplicatePendingRequest) {
			apperrors.Conflict(c, apperrors.VerificationDuplicatePending, "You already have a verification request in progress")
			return
		}
		log.Error("Failed to submit verification request", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit verification")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Verification request submitted",
		"verification": request,
	})
}

// BeginReview places a hold on a pending request
// POST /api/v1/verifications/:id/review
func (ctrl *VerificationController) BeginReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid verification request ID")
		return
	}

	request, err := ctrl.verificationService.BeginReview(c.Request.Context(), requestID, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationNotFound):
			apperrors.NotFound(c, apperrors.VerificationNotFound, "Verification request not found")
		case errors.Is(err, service.ErrReviewerConflict):
			apperrors.Conflict(c, apperrors.VerificationReviewerConflict, "Another reviewer is already reviewing this request")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.VerificationInvalidTransition, "This request has already been decided")
		default:
			log.Error("Failed to begin review", err, map[string]interface{}{
				"request_id":  requestID,
				"reviewer_id": reviewerID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "review verification")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Review started",
		"verification": request,
	})
}

// Decide records a terminal decision on a request
// POST /api/v1/verifications/:id/decision
func (ctrl *VerificationController) Decide(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	requestID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid verification request ID")
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Outcome must be approve or reject")
		return
	}

	request, err := ctrl.verificationService.Decide(
		c.Request.Context(),
		requestID,
		reviewerID,
		model.VerificationOutcome(req.Outcome),
		req.Reason,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationNotFound):
			apperrors.NotFound(c, apperrors.VerificationNotFound, "Verification request not found")
		case errors.Is(err, service.ErrReviewerConflict):
			apperrors.Conflict(c, apperrors.VerificationReviewerConflict, "Another reviewer is already reviewing this request")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.VerificationInvalidTransition, "This request has already been decided")
		case errors.Is(err, service.ErrInvalidOutcome):
			apperrors.BadRequest(c, apperrors.VerificationInvalidOutcome, "Outcome must be approve or reject")
		default:
			log.Error("Failed to decide verification request", err, map[string]interface{}{
				"request_id":  requestID,
				"reviewer_id": reviewerID,
				"outcome":     req.Outcome,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "decide verification")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Verification request decided",
		"verification": request,
	})
}

// GetByID returns one verification request
// GET /api/v1/verifications/:id
func (ctrl *VerificationController) GetByID(c *gin.Context) {
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid verification request ID")
		return
	}

	request, err := ctrl.verificationService.GetByID(requestID)
	if err != nil {
		if errors.Is(err, service.ErrVerificationNotFound) {
			apperrors.NotFound(c, apperrors.VerificationNotFound, "Verification request not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch verification")
		return
	}

	// Requesters see their own; reviewers and admins see all
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if request.UserID != userID && role != model.RoleReviewer && role != model.RoleAdmin {
		apperrors.Forbidden(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verification": request,
	})
}

// ListPending returns the review queue, oldest submission first
// GET /api/v1/verifications/pending
func (ctrl *VerificationController) ListPending(c *gin.Context) {
	page, pageSize := parsePagination(c)

	requests, total, err := ctrl.verificationService.ListPending(page, pageSize)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list verifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": requests,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// ListMine returns the authenticated user's verification history
// GET /api/v1/verifications/me
func (ctrl *VerificationController) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	requests, err := ctrl.verificationService.ListByUser(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list verifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": requests,
	})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
