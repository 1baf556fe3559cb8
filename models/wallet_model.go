package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EntryCredit = "credit"
	EntryDebit  = "debit"
)

const (
	CategoryDirectReferral = "direct_referral"
	CategoryRankBonus      = "rank_bonus"
	CategoryWithdrawal     = "withdrawal"
	CategoryRefund         = "refund"
	CategoryAdjustment     = "adjustment"
)

type Wallet struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode     string          `gorm:"size:20;not null;uniqueIndex" json:"member_code"`
	Balance        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	TotalEarned    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_withdrawn"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WalletEntry rows are append-only.
type WalletEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	WalletID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"wallet_id"`
	MemberCode   string          `gorm:"size:20;not null;index" json:"member_code"`
	Type         string          `gorm:"size:10;not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category     string          `gorm:"size:30;not null" json:"category"`
	Description  string          `gorm:"size:255" json:"description"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"balance_after"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

func (e *WalletEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Signed returns the entry's effect on the balance.
func (e WalletEntry) Signed() decimal.Decimal {
	if e.Type == EntryDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
