package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

type Withdrawal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode    string          `gorm:"size:20;not null;index" json:"member_code"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status        string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Bank          BankDetails     `gorm:"embedded;embeddedPrefix:bank_" json:"bank"`
	AdminRemark   *string         `gorm:"type:text" json:"admin_remark"`
	TransactionID *string         `gorm:"size:100" json:"transaction_id"`
	RequestedAt   time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt   *time.Time      `json:"processed_at"`

	Member Member `gorm:"foreignKey:MemberCode;references:MemberCode" json:"member,omitempty"`
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
