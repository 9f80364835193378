package repository

import (
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	// CreateIdempotent inserts the record unless one already exists for the
	// same (case_id, storage_ref). Returns the committed record either way,
	// with created=false on replay.
	CreateIdempotent(doc *model.DocumentRecord) (*model.DocumentRecord, bool, error)
	FindByID(id uint) (*model.DocumentRecord, error)
	FindByCaseAndRef(caseID uint, storageRef string) (*model.DocumentRecord, error)
	ListByCase(caseID uint) ([]model.DocumentRecord, error)
	ListUploadedSince(since time.Time) ([]model.DocumentRecord, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateIdempotent(doc *model.DocumentRecord) (*model.DocumentRecord, bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}, {Name: "storage_ref"}},
		DoNothing: true,
	}).Create(doc)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		// a concurrent or earlier call already committed this document
		existing, err := r.FindByCaseAndRef(doc.CaseID, doc.StorageRef)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return doc, true, nil
}

func (r *documentRepository) FindByID(id uint) (*model.DocumentRecord, error) {
	var doc model.DocumentRecord
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByCaseAndRef(caseID uint, storageRef string) (*model.DocumentRecord, error) {
	var doc model.DocumentRecord
	err := r.db.
		Where("case_id = ? AND storage_ref = ?", caseID, storageRef).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByCase(caseID uint) ([]model.DocumentRecord, error) {
	var docs []model.DocumentRecord
	err := r.db.
		Where("case_id = ?", caseID).
		Order("uploaded_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) ListUploadedSince(since time.Time) ([]model.DocumentRecord, error) {
	var docs []model.DocumentRecord
	err := r.db.
		Where("uploaded_at >= ?", since).
		Order("uploaded_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
