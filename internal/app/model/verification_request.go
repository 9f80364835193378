package model

import (
	"time"
)

// VerificationStatus 인증 요청 상태
type VerificationStatus string

const (
	VerificationStatusPending     VerificationStatus = "pending"      // 검토 대기
	VerificationStatusUnderReview VerificationStatus = "under_review" // 검토 중
	VerificationStatusApproved    VerificationStatus = "approved"     // 승인됨
	VerificationStatusRejected    VerificationStatus = "rejected"     // 반려됨
)

// VerificationRequest 본인 인증 요청 모델
// 이력 보존을 위해 절대 삭제하지 않음 (소프트 삭제도 없음)
type VerificationRequest struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 사용자당 활성(미종결) 요청은 최대 1건
	UserID uint  `gorm:"not null;index;uniqueIndex:idx_verification_requests_active_user,where:status = 'pending' OR status = 'under_review'" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Status      VerificationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SubmittedAt time.Time          `gorm:"not null" json:"submitted_at"`
	DecidedAt   *time.Time         `json:"decided_at,omitempty"`
	ReviewerID  *uint              `gorm:"index" json:"reviewer_id,omitempty"`
	Reviewer    *User              `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`

	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`
}

func (VerificationRequest) TableName() string {
	return "verification_requests"
}

// IsTerminal reports whether the request has reached a final decision
func (v *VerificationRequest) IsTerminal() bool {
	return v.Status == VerificationStatusApproved || v.Status == VerificationStatusRejected
}

// VerificationOutcome 검토 결과
type VerificationOutcome string

const (
	OutcomeApprove VerificationOutcome = "approve"
	OutcomeReject  VerificationOutcome = "reject"
)
