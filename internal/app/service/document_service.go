package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/storage"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidDocumentMeta = errors.New("invalid document metadata")
	ErrUnsupportedBackend  = storage.ErrUnsupportedBackend
)

// RegisterDocumentInput carries the metadata for one attachment. StorageRef
// may be empty, in which case Data is pushed to the backend first and the
// returned locator is used.
type RegisterDocumentInput struct {
	CaseID      uint
	UploaderID  uint
	FileName    string
	ContentType string
	Size        int64
	Backend     model.StorageBackendType
	StorageRef  string
	Data        []byte
}

// DocumentService owns document metadata. Records are immutable once
// committed; a re-upload creates a new record rather than editing one.
type DocumentService interface {
	// Register commits the metadata. Keyed on (caseID, storageRef): a retry
	// with an already-committed ref returns the existing record.
	Register(ctx context.Context, in RegisterDocumentInput) (*model.DocumentRecord, bool, error)
	GetByID(documentID uint) (*model.DocumentRecord, error)
	ListByCase(caseID uint) ([]model.DocumentRecord, error)
	// Download resolves the record's locator through its backend
	Download(ctx context.Context, documentID uint) (*model.DocumentRecord, []byte, error)
}

type documentService struct {
	repo     repository.DocumentRepository
	backends *storage.Registry
}

func NewDocumentService(repo repository.DocumentRepository, backends *storage.Registry) DocumentService {
	return &documentService{
		repo:     repo,
		backends: backends,
	}
}

func (s *documentService) Register(ctx context.Context, in RegisterDocumentInput) (*model.DocumentRecord, bool, error) {
	if strings.TrimSpace(in.FileName) == "" {
		return nil, false, ErrInvalidDocumentMeta
	}
	if in.Size < 0 {
		return nil, false, ErrInvalidDocumentMeta
	}
	if in.CaseID == 0 || in.UploaderID == 0 {
		return nil, false, ErrInvalidDocumentMeta
	}

	backendName := in.Backend
	if backendName == "" {
		def, err := s.backends.Default()
		if err != nil {
			return nil, false, err
		}
		backendName = def.Name()
	}

	backend, err := s.backends.Backend(backendName)
	if err != nil {
		return nil, false, err
	}

	storageRef := in.StorageRef
	if storageRef == "" {
		storageRef, err = backend.Put(ctx, in.Data, storage.ObjectMeta{
			FileName:    in.FileName,
			ContentType: in.ContentType,
		})
		if err != nil {
			logger.Error("Failed to store document bytes", err, map[string]interface{}{
				"case_id": in.CaseID,
				"backend": backendName,
			})
			return nil, false, err
		}
	}

	record := &model.DocumentRecord{
		CaseID:      in.CaseID,
		FileName:    in.FileName,
		StorageRef:  storageRef,
		ContentType: in.ContentType,
		Size:        in.Size,
		Backend:     backendName,
		UploadedBy:  in.UploaderID,
		UploadedAt:  time.Now(),
	}

	committed, created, err := s.repo.CreateIdempotent(record)
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Info("Document registered", map[string]interface{}{
			"document_id": committed.ID,
			"case_id":     committed.CaseID,
			"uploaded_by": committed.UploadedBy,
			"backend":     committed.Backend,
		})
	} else {
		logger.Debug("Document registration deduplicated", map[string]interface{}{
			"document_id": committed.ID,
			"case_id":     committed.CaseID,
			"storage_ref": committed.StorageRef,
		})
	}

	return committed, created, nil
}

func (s *documentService) GetByID(documentID uint) (*model.DocumentRecord, error) {
	record, err := s.repo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *documentService) ListByCase(caseID uint) ([]model.DocumentRecord, error) {
	return s.repo.ListByCase(caseID)
}

func (s *documentService) Download(ctx context.Context, documentID uint) (*model.DocumentRecord, []byte, error) {
	record, err := s.GetByID(documentID)
	if err != nil {
		return nil, nil, err
	}

	backend, err := s.backends.Backend(record.Backend)
	if err != nil {
		return nil, nil, err
	}

	data, err := backend.Get(ctx, record.StorageRef)
	if err != nil {
		logger.Error("Failed to fetch document bytes", err, map[string]interface{}{
			"document_id": record.ID,
			"backend":     record.Backend,
		})
		return nil, nil, err
	}

	return record, data, nil
}
