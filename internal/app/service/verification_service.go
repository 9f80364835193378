package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVerificationNotFound    = errors.New("verification request not found")
	ErrInvalidTransition       = errors.New("invalid verification status transition")
	ErrDuplicatePendingRequest = errors.New("user already has an active verification request")
	ErrReviewerConflict        = errors.New("request is held by another reviewer")
	ErrInvalidOutcome          = errors.New("invalid verification outcome")
)

// VerificationService drives the request lifecycle:
//
//	pending -> under_review -> approved | rejected
//
// A pending request may also be decided directly. Approved and rejected are
// terminal; no transition ever leaves them. State changes run inside a
// transaction with a row lock, and side effects are dispatched only after the
// transaction commits.
type VerificationService interface {
	Submit(ctx context.Context, userID uint) (*model.VerificationRequest, error)
	BeginReview(ctx context.Context, requestID, reviewerID uint) (*model.VerificationRequest, error)
	Decide(ctx context.Context, requestID, reviewerID uint, outcome model.VerificationOutcome, reason string) (*model.VerificationRequest, error)
	GetByID(requestID uint) (*model.VerificationRequest, error)
	ListPending(page, pageSize int) ([]model.VerificationRequest, int64, error)
	ListByUser(userID uint) ([]model.VerificationRequest, error)
	// IsApproved reports whether the user's latest request ended approved
	IsApproved(userID uint) (bool, error)
}

type verificationService struct {
	db         *gorm.DB
	repo       repository.VerificationRepository
	dispatcher *SideEffectDispatcher
}

func NewVerificationService(db *gorm.DB, repo repository.VerificationRepository, dispatcher *SideEffectDispatcher) VerificationService {
	return &verificationService{
		db:         db,
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// isDuplicateKeyError matches the unique violation wording of both postgres
// and the sqlite test driver
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Submit opens a new pending request. A user can hold at most one request
// that has not reached a terminal status; a duplicate submission is refused
// but still leaves an audit trace of the attempt.
func (s *verificationService) Submit(ctx context.Context, userID uint) (*model.VerificationRequest, error) {
	var request *model.VerificationRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active model.VerificationRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status IN ?", userID, []model.VerificationStatus{
				model.VerificationStatusPending,
				model.VerificationStatusUnderReview,
			}).
			Order("submitted_at DESC").
			First(&active).Error
		if err == nil {
			return ErrDuplicatePendingRequest
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		request = &model.VerificationRequest{
			UserID:      userID,
			Status:      model.VerificationStatusPending,
			SubmittedAt: time.Now(),
		}
		if err := tx.Create(request).Error; err != nil {
			// A concurrent submit that slipped past the check above still
			// hits the partial unique index on active requests
			if isDuplicateKeyError(err) {
				return ErrDuplicatePendingRequest
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePendingRequest) {
			logger.Warn("Duplicate verification submission refused", map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	// Submissions are logged but carry no audit or notification effects;
	// only decisions do
	logger.Info("Verification request submitted", map[string]interface{}{
		"request_id": request.ID,
		"user_id":    userID,
	})

	return request, nil
}

// BeginReview moves a pending request to under_review and records the
// reviewer holding it. A reviewer repeating their own hold gets the request
// back unchanged; anyone else hits a conflict.
func (s *verificationService) BeginReview(ctx context.Context, requestID, reviewerID uint) (*model.VerificationRequest, error) {
	var request *model.VerificationRequest
	var alreadyHeld bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.VerificationRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}

		switch req.Status {
		case model.VerificationStatusPending:
			req.Status = model.VerificationStatusUnderReview
			req.ReviewerID = &reviewerID
			if err := tx.Save(&req).Error; err != nil {
				return err
			}
		case model.VerificationStatusUnderReview:
			if req.ReviewerID == nil || *req.ReviewerID != reviewerID {
				return ErrReviewerConflict
			}
			alreadyHeld = true
		default:
			return ErrInvalidTransition
		}

		request = &req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyHeld {
		logger.Info("Verification review started", map[string]interface{}{
			"request_id":  requestID,
			"reviewer_id": reviewerID,
		})
	}

	return request, nil
}

// Decide moves a request to approved or rejected. Allowed from pending (a
// direct decision) or from under_review by the reviewer holding it. Repeating
// an identical decision on an already-terminal request returns the committed
// request instead of failing, so a caller that crashed between commit and
// dispatch can safely retry.
func (s *verificationService) Decide(ctx context.Context, requestID, reviewerID uint, outcome model.VerificationOutcome, reason string) (*model.VerificationRequest, error) {
	var target model.VerificationStatus
	switch outcome {
	case model.OutcomeApprove:
		target = model.VerificationStatusApproved
	case model.OutcomeReject:
		target = model.VerificationStatusRejected
	default:
		return nil, ErrInvalidOutcome
	}

	var request *model.VerificationRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.VerificationRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}

		if req.IsTerminal() {
			// Idempotent replay: same reviewer, same outcome
			if req.Status == target && req.ReviewerID != nil && *req.ReviewerID == reviewerID {
				request = &req
				return nil
			}
			return ErrInvalidTransition
		}

		if req.Status == model.VerificationStatusUnderReview &&
			req.ReviewerID != nil && *req.ReviewerID != reviewerID {
			return ErrReviewerConflict
		}

		now := time.Now()
		req.Status = target
		req.DecidedAt = &now
		req.ReviewerID = &reviewerID
		if target == model.VerificationStatusRejected {
			req.RejectionReason = reason
		}
		if err := tx.Save(&req).Error; err != nil {
			return err
		}

		request = &req
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Verification request decided", map[string]interface{}{
		"request_id":  requestID,
		"reviewer_id": reviewerID,
		"status":      request.Status,
	})

	// Post-commit, dedup-keyed: a replayed decision re-dispatches but the
	// store keeps exactly one audit row and one notification
	_ = s.dispatcher.VerificationDecided(ctx, request)

	return request, nil
}

func (s *verificationService) GetByID(requestID uint) (*model.VerificationRequest, error) {
	request, err := s.repo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *verificationService) ListPending(page, pageSize int) ([]model.VerificationRequest, int64, error) {
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
	return s.repo.ListByStatus(model.VerificationStatusPending, pageSize, offset)
}

func (s *verificationService) ListByUser(userID uint) ([]model.VerificationRequest, error) {
	return s.repo.ListByUserID(userID)
}

func (s *verificationService) IsApproved(userID uint) (bool, error) {
	latest, err := s.repo.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return latest.Status == model.VerificationStatusApproved, nil
}
