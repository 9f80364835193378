package repository

import (
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"gorm.io/gorm"
)

type VerificationRepository interface {
	Create(req *model.VerificationRequest) error
	FindByID(id uint) (*model.VerificationRequest, error)
	// FindActiveByUserID returns the user's non-terminal request, if any
	FindActiveByUserID(userID uint) (*model.VerificationRequest, error)
	// FindLatestByUserID returns the user's most recently submitted request
	FindLatestByUserID(userID uint) (*model.VerificationRequest, error)
	ListByStatus(status model.VerificationStatus, limit, offset int) ([]model.VerificationRequest, int64, error)
	ListByUserID(userID uint) ([]model.VerificationRequest, error)
	// ListDecidedSince returns requests that reached a terminal status on or
	// after the given time, oldest first
	ListDecidedSince(since time.Time) ([]model.VerificationRequest, error)
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(req *model.VerificationRequest) error {
	return r.db.Create(req).Error
}

func (r *verificationRepository) FindByID(id uint) (*model.VerificationRequest, error) {
	var req model.VerificationRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *verificationRepository) FindActiveByUserID(userID uint) (*model.VerificationRequest, error) {
	var req model.VerificationRequest
	err := r.db.
		Where("user_id = ? AND status IN ?", userID, []model.VerificationStatus{
			model.VerificationStatusPending,
			model.VerificationStatusUnderReview,
		}).
		Order("submitted_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *verificationRepository) FindLatestByUserID(userID uint) (*model.VerificationRequest, error) {
	var req model.VerificationRequest
	err := r.db.
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *verificationRepository) ListByStatus(status model.VerificationStatus, limit, offset int) ([]model.VerificationRequest, int64, error) {
	var requests []model.VerificationRequest
	var total int64

	query := r.db.Model(&model.VerificationRequest{}).Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *verificationRepository) ListDecidedSince(since time.Time) ([]model.VerificationRequest, error) {
	var requests []model.VerificationRequest
	err := r.db.
		Where("status IN ? AND decided_at >= ?", []model.VerificationStatus{
			model.VerificationStatusApproved,
			model.VerificationStatusRejected,
		}, since).
		Order("decided_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *verificationRepository) ListByUserID(userID uint) ([]model.VerificationRequest, error) {
	var requests []model.VerificationRequest
	err := r.db.
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
