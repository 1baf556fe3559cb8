package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RankHistory struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode string          `gorm:"size:20;not null;index" json:"member_code"`
	Rank       string          `gorm:"size:30;not null" json:"rank"`
	RankLevel  int             `gorm:"not null" json:"rank_level"`
	TeamSize   int             `gorm:"not null" json:"team_size"`
	Bonus      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"bonus"`
	AchievedAt time.Time       `gorm:"not null" json:"achieved_at"`
}

func (h *RankHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

const (
	RewardPending   = "pending"
	RewardDelivered = "delivered"
)

type Reward struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MemberCode  string    `gorm:"size:20;not null;index" json:"member_code"`
	Rank        string    `gorm:"size:30;not null" json:"rank"`
	Description string    `gorm:"size:255" json:"description"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
