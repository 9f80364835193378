package repository

import (
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"gorm.io/gorm"
)

type CaseRepository interface {
	Create(c *model.Case) error
	FindByID(id uint) (*model.Case, error)
	FindByCaseNumber(caseNumber string) (*model.Case, error)
	ListByUser(userID uint, limit, offset int) ([]model.Case, int64, error)
	Update(c *model.Case) error
}

type caseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(c *model.Case) error {
	return r.db.Create(c).Error
}

func (r *caseRepository) FindByID(id uint) (*model.Case, error) {
	var c model.Case
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) FindByCaseNumber(caseNumber string) (*model.Case, error) {
	var c model.Case
	if err := r.db.Where("case_number = ?", caseNumber).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) ListByUser(userID uint, limit, offset int) ([]model.Case, int64, error) {
	var cases []model.Case
	var total int64

	query := r.db.Model(&model.Case{}).Where("created_by = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&cases).Error; err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

func (r *caseRepository) Update(c *model.Case) error {
	return r.db.Save(c).Error
}
