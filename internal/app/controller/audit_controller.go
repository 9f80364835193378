package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	apperrors "github.com/lexcase/lexcase-backend/internal/errors"
	"github.com/lexcase/lexcase-backend/internal/middleware"
)

type AuditController struct {
	auditService service.AuditService
}

func NewAuditController(auditService service.AuditService) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// ListByActor returns one actor's audit trail, oldest first
// GET /api/v1/audit/actors/:id
func (ctrl *AuditController) ListByActor(c *gin.Context) {
	actorID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid actor ID")
		return
	}

	entries, err := ctrl.auditService.ListByActor(actorID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list audit entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
	})
}

// ListAll returns the full trail, oldest first
// GET /api/v1/audit
func (ctrl *AuditController) ListAll(c *gin.Context) {
	page, pageSize := parsePagination(c)

	entries, total, err := ctrl.auditService.ListAll(page, pageSize)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list audit entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// Export streams the trail as an xlsx workbook
// GET /api/v1/audit/export
func (ctrl *AuditController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	workbook, err := ctrl.auditService.ExportWorkbook()
	if err != nil {
		log.Error("Failed to build audit export", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.AuditExportFailed, "Audit export failed")
		return
	}

	filename := fmt.Sprintf("audit-trail-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		log.Error("Failed to stream audit export", err)
	}
}
