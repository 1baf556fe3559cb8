package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// BankDetails is the KYC sub-record of a member. Withdrawals keep a copy of
// it as it was at request time.
type BankDetails struct {
	AccountName   string `gorm:"size:255" json:"account_name"`
	AccountNumber string `gorm:"size:50" json:"account_number"`
	BankName      string `gorm:"size:255" json:"bank_name"`
	BranchCode    string `gorm:"size:50" json:"branch_code"`
	TaxID         string `gorm:"size:50" json:"tax_id"`
	Verified      bool   `gorm:"default:false" json:"verified"`
}

func (b BankDetails) Complete() bool {
	return b.AccountName != "" && b.AccountNumber != "" && b.BankName != ""
}

type Member struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode string    `gorm:"size:20;not null;uniqueIndex" json:"member_code"`
	Seq        int64     `gorm:"not null;index" json:"-"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile     string    `gorm:"size:20;not null;uniqueIndex" json:"mobile"`
	Password   string    `gorm:"not null" json:"-"`
	Role       string    `gorm:"size:20;not null;default:'user'" json:"role"`

	// SponsorID is who issued the referral link, UplineID is the placement
	// parent in the matrix. They differ whenever placement spilled over.
	SponsorID  *string `gorm:"size:20;index" json:"sponsor_id"`
	UplineID   *string `gorm:"size:20;index" json:"upline_id"`
	ReferredBy *string `gorm:"size:20;index" json:"referred_by"`

	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	ActivatedAt *time.Time `json:"activated_at"`

	Rank              string          `gorm:"size:30;not null" json:"rank"`
	RankLevel         int             `gorm:"not null;default:0" json:"rank_level"`
	TotalTeam         int             `gorm:"not null;default:0" json:"total_team"`
	ActiveDirectCount int             `gorm:"not null;default:0" json:"active_direct_count"`
	Level1Complete    bool            `gorm:"not null;default:false" json:"level1_complete"`
	TotalEarnings     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_earnings"`
	DirectEarnings    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"direct_earnings"`
	TeamEarnings      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"team_earnings"`

	Bank      BankDetails `gorm:"embedded;embeddedPrefix:bank_" json:"bank"`
	IDCardURL *string     `gorm:"size:255" json:"id_card_url"`

	RankHistory []RankHistory `gorm:"foreignKey:MemberCode;references:MemberCode" json:"rank_history,omitempty"`
	Rewards     []Reward      `gorm:"foreignKey:MemberCode;references:MemberCode" json:"rewards,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MemberCounter names the sequence that mints member codes.
const MemberCounter = "member_code"

// Counter is a named monotonic sequence.
type Counter struct {
	Name string `gorm:"size:50;primaryKey"`
	Seq  int64  `gorm:"not null"`
}
