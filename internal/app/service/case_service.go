package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCaseNotFound        = errors.New("case not found")
	ErrDuplicateCaseNumber = errors.New("case number already exists")
	ErrNotVerified         = errors.New("user has no approved verification")
	ErrInvalidCaseInput    = errors.New("invalid case input")
)

// CreateCaseInput carries the fields for opening a case
type CreateCaseInput struct {
	CaseNumber  string
	Title       string
	Description string
	Parties     []string
}

// CaseService is the aggregate tying verification outcome, documents and the
// audit trail to a single case. The registry, audit store and outbox commit
// independently, so every cross-component call here is idempotent and
// retryable instead of transactional.
type CaseService interface {
	CreateCase(ctx context.Context, userID uint, in CreateCaseInput) (*model.Case, error)
	GetCase(caseID uint) (*model.Case, error)
	ListMyCases(userID uint, page, pageSize int) ([]model.Case, int64, error)
	CloseCase(caseID, userID uint) (*model.Case, error)
	// CanActOnCase reports whether the user's latest verification request
	// ended approved
	CanActOnCase(userID uint) (bool, error)
	AttachDocument(ctx context.Context, caseID, uploaderID uint, in RegisterDocumentInput) (*model.DocumentRecord, error)
	GetCaseDocuments(ctx context.Context, caseID uint) ([]model.DocumentRecord, error)
}

type caseService struct {
	repo          repository.CaseRepository
	verifications VerificationService
	documents     DocumentService
	dispatcher    *SideEffectDispatcher
}

func NewCaseService(repo repository.CaseRepository, verifications VerificationService, documents DocumentService, dispatcher *SideEffectDispatcher) CaseService {
	return &caseService{
		repo:          repo,
		verifications: verifications,
		documents:     documents,
		dispatcher:    dispatcher,
	}
}

// CreateCase opens a case for a verified user
func (s *caseService) CreateCase(ctx context.Context, userID uint, in CreateCaseInput) (*model.Case, error) {
	if strings.TrimSpace(in.CaseNumber) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, ErrInvalidCaseInput
	}

	allowed, err := s.verifications.IsApproved(userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotVerified
	}

	c := &model.Case{
		CaseNumber:  in.CaseNumber,
		Title:       in.Title,
		Description: in.Description,
		Parties:     in.Parties,
		Status:      model.CaseStatusOpen,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(c); err != nil {
		return nil, err
	}

	logger.Info("Case opened", map[string]interface{}{
		"case_id":     c.ID,
		"case_number": c.CaseNumber,
		"created_by":  userID,
	})

	// Post-commit audit, keyed on the case id
	_ = s.dispatcher.CaseOpened(ctx, c)

	return c, nil
}

func (s *caseService) GetCase(caseID uint) (*model.Case, error) {
	c, err := s.repo.FindByID(caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *caseService) ListMyCases(userID uint, page, pageSize int) ([]model.Case, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.repo.ListByUser(userID, pageSize, offset)
}

func (s *caseService) CloseCase(caseID, userID uint) (*model.Case, error) {
	c, err := s.GetCase(caseID)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy != userID {
		return nil, ErrCaseNotFound
	}
	if c.Status == model.CaseStatusClosed {
		return c, nil
	}

	c.Status = model.CaseStatusClosed
	if err := s.repo.Update(c); err != nil {
		return nil, err
	}

	logger.Info("Case closed", map[string]interface{}{
		"case_id": c.ID,
		"user_id": userID,
	})
	return c, nil
}

func (s *caseService) CanActOnCase(userID uint) (bool, error) {
	return s.verifications.IsApproved(userID)
}

// AttachDocument gates on verification, registers the metadata, then appends
// the audit entry. Registry and audit commit separately; the registry write is
// authoritative and the audit entry is derived from it, so a crash between
// the two is healed by reconciliation rather than rollback.
func (s *caseService) AttachDocument(ctx context.Context, caseID, uploaderID uint, in RegisterDocumentInput) (*model.DocumentRecord, error) {
	allowed, err := s.verifications.IsApproved(uploaderID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		logger.Warn("Document attachment refused for unverified user", map[string]interface{}{
			"case_id": caseID,
			"user_id": uploaderID,
		})
		return nil, ErrNotVerified
	}

	if _, err := s.GetCase(caseID); err != nil {
		return nil, err
	}

	in.CaseID = caseID
	in.UploaderID = uploaderID

	record, _, err := s.documents.Register(ctx, in)
	if err != nil {
		return nil, err
	}

	// Dispatch runs on the retry path too; the dedup key keeps the trail at
	// one entry per document
	_ = s.dispatcher.DocumentAttached(ctx, record)

	return record, nil
}

// GetCaseDocuments lists the case's documents and reconciles the audit trail
// on the way: any document whose attachment entry is missing (a crash landed
// between the registry commit and the audit commit) gets its entry re-derived
// here.
func (s *caseService) GetCaseDocuments(ctx context.Context, caseID uint) ([]model.DocumentRecord, error) {
	if _, err := s.GetCase(caseID); err != nil {
		return nil, err
	}

	records, err := s.documents.ListByCase(caseID)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if err := s.dispatcher.DocumentAttached(ctx, &records[i]); err != nil {
			logger.Warn("Audit reconciliation deferred", map[string]interface{}{
				"document_id": records[i].ID,
				"case_id":     caseID,
				"error":       err.Error(),
			})
		}
	}

	return records, nil
}
