package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/pkg/logger"
)

// SideEffectDispatcher runs the follow-up work of a committed state change:
// audit entries and user notifications. Every effect carries a dedup key
// derived from the record that triggered it, so dispatching is safe to repeat
// after a crash or during reconciliation. Callers invoke it strictly after
// their own transaction has committed.
type SideEffectDispatcher struct {
	audits        AuditService
	notifications NotificationService
	timeout       time.Duration
}

func NewSideEffectDispatcher(audits AuditService, notifications NotificationService, timeout time.Duration) *SideEffectDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SideEffectDispatcher{
		audits:        audits,
		notifications: notifications,
		timeout:       timeout,
	}
}

func (d *SideEffectDispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// VerificationDecided records the decision and notifies the requester of the
// outcome. The dedup key is per request, not per attempt, so a decision that
// is replayed after a crash still produces exactly one audit row and one
// notification.
func (d *SideEffectDispatcher) VerificationDecided(ctx context.Context, request *model.VerificationRequest) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	action := model.ActionVerificationApproved
	title := "Verification approved"
	message := "Your verification request was approved. You can now open cases and attach documents."
	if request.Status == model.VerificationStatusRejected {
		action = model.ActionVerificationRejected
		title = "Verification rejected"
		message = "Your verification request was rejected."
		if request.RejectionReason != "" {
			message = fmt.Sprintf("Your verification request was rejected: %s", request.RejectionReason)
		}
	}

	var reviewerID uint
	if request.ReviewerID != nil {
		reviewerID = *request.ReviewerID
	}
	occurredAt := time.Now()
	if request.DecidedAt != nil {
		occurredAt = *request.DecidedAt
	}

	_, err := d.audits.Append(ctx, AuditAppend{
		ActorID:     reviewerID,
		Action:      action,
		Description: fmt.Sprintf("Verification request %d decided: %s", request.ID, request.Status),
		OccurredAt:  occurredAt,
		DedupKey:    fmt.Sprintf("verification:%d:decided", request.ID),
	})
	if err != nil {
		logger.Error("Failed to audit verification decision", err, map[string]interface{}{
			"request_id": request.ID,
			"status":     request.Status,
		})
		return err
	}

	requestID := request.ID
	_, err = d.notifications.Enqueue(ctx, EnqueueInput{
		UserID:           request.UserID,
		Type:             model.NotificationTypeVerificationDecided,
		Title:            title,
		Message:          message,
		DedupKey:         fmt.Sprintf("verification:%d:decided", request.ID),
		RelatedRequestID: &requestID,
	})
	if err != nil {
		logger.Error("Failed to enqueue decision notification", err, map[string]interface{}{
			"request_id": request.ID,
			"status":     request.Status,
		})
	}
	return err
}

// DocumentAttached records the attachment in the audit trail. Attachments do
// not notify anyone.
func (d *SideEffectDispatcher) DocumentAttached(ctx context.Context, doc *model.DocumentRecord) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	_, err := d.audits.Append(ctx, AuditAppend{
		ActorID:     doc.UploadedBy,
		Action:      model.ActionDocumentAttached,
		Description: fmt.Sprintf("Document %q attached to case %d", doc.FileName, doc.CaseID),
		OccurredAt:  doc.UploadedAt,
		DedupKey:    fmt.Sprintf("document:%d:attached", doc.ID),
	})
	if err != nil {
		logger.Error("Failed to audit document attachment", err, map[string]interface{}{
			"document_id": doc.ID,
			"case_id":     doc.CaseID,
		})
	}
	return err
}

// CaseOpened records the case creation in the audit trail.
func (d *SideEffectDispatcher) CaseOpened(ctx context.Context, c *model.Case) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	_, err := d.audits.Append(ctx, AuditAppend{
		ActorID:     c.CreatedBy,
		Action:      model.ActionCaseOpened,
		Description: fmt.Sprintf("Case %s opened", c.CaseNumber),
		OccurredAt:  c.CreatedAt,
		DedupKey:    fmt.Sprintf("case:%d:opened", c.ID),
	})
	if err != nil {
		logger.Error("Failed to audit case opening", err, map[string]interface{}{
			"case_id": c.ID,
		})
	}
	return err
}
