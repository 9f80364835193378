package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusClosed CaseStatus = "closed"
)

// Case 법률 사건 모델
type Case struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseNumber  string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"case_number"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Parties     pq.StringArray `gorm:"type:text[];default:'{}';not null" json:"parties"` // involved party names
	Status      CaseStatus     `gorm:"type:varchar(20);default:'open';index" json:"status"`

	CreatedBy uint  `gorm:"not null;index" json:"created_by"`
	Creator   *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (Case) TableName() string {
	return "cases"
}
