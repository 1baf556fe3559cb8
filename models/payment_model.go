package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// ActivationPayment records the activation fee checkout of a member.
type ActivationPayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode      string          `gorm:"size:20;not null;index" json:"member_code"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	Provider        string          `gorm:"size:20;not null" json:"provider"`
	Status          string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	ProviderOrderID *string         `gorm:"size:100;uniqueIndex" json:"provider_order_id"`
	ProviderTxnID   *string         `gorm:"size:100" json:"provider_txn_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *ActivationPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
