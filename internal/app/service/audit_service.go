package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrAuditStoreUnavailable = errors.New("audit store unavailable")

// AuditAppend describes one entry to record
type AuditAppend struct {
	ActorID     uint
	Action      string
	Description string
	OccurredAt  time.Time
	// DedupKey collapses retried appends into a single row. Leave empty for
	// one-off entries that are never retried.
	DedupKey string
}

// AuditService owns the append-only audit trail. Nothing here updates or
// deletes; other components only ever hold the append capability.
type AuditService interface {
	Append(ctx context.Context, in AuditAppend) (*model.AuditEntry, error)
	ListByActor(actorID uint) ([]model.AuditEntry, error)
	ListAll(page, pageSize int) ([]model.AuditEntry, int64, error)
	// ExportWorkbook renders the full trail as an xlsx workbook for
	// compliance reporting
	ExportWorkbook() (*excelize.File, error)
}

type auditService struct {
	repo       repository.AuditRepository
	maxRetries int
}

func NewAuditService(repo repository.AuditRepository, maxRetries int) AuditService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &auditService{
		repo:       repo,
		maxRetries: maxRetries,
	}
}

// Append records an entry, retrying with backoff while the store is
// unavailable. A dedup-keyed entry that already exists is returned unchanged,
// so at-least-once dispatch still yields exactly one row.
func (s *auditService) Append(ctx context.Context, in AuditAppend) (*model.AuditEntry, error) {
	entry := &model.AuditEntry{
		ActorID:     in.ActorID,
		Action:      in.Action,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
	}
	if in.DedupKey != "" {
		key := in.DedupKey
		entry.DedupKey = &key
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		committed, created, err := s.repo.Append(entry)
		if err == nil {
			if !created {
				logger.Debug("Audit append deduplicated", map[string]interface{}{
					"dedup_key": in.DedupKey,
					"action":    in.Action,
				})
			}
			return committed, nil
		}

		lastErr = err
		logger.Warn("Audit append attempt failed", map[string]interface{}{
			"attempt": attempt,
			"action":  in.Action,
			"error":   err.Error(),
		})

		if attempt == s.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrAuditStoreUnavailable, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	logger.Error("Audit append exhausted retries", lastErr, map[string]interface{}{
		"action":   in.Action,
		"actor_id": in.ActorID,
	})
	return nil, fmt.Errorf("%w: %v", ErrAuditStoreUnavailable, lastErr)
}

func (s *auditService) ListByActor(actorID uint) ([]model.AuditEntry, error) {
	return s.repo.ListByActor(actorID)
}

func (s *auditService) ListAll(page, pageSize int) ([]model.AuditEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	offset := (page - 1) * pageSize
	return s.repo.ListAll(pageSize, offset)
}

func (s *auditService) ExportWorkbook() (*excelize.File, error) {
	logger.Info("Exporting audit trail to workbook", nil)

	entries, total, err := s.repo.ListAll(0, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entries = nil
		} else {
			return nil, err
		}
	}

	f := excelize.NewFile()
	const sheet = "Audit Trail"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn("Failed to drop default sheet", map[string]interface{}{
			"error": err.Error(),
		})
	}

	headers := []string{"ID", "Actor ID", "Action", "Description", "Occurred At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.ID,
			entry.ActorID,
			entry.Action,
			entry.Description,
			entry.OccurredAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Audit trail exported", map[string]interface{}{
		"entries": total,
	})
	return f, nil
}
