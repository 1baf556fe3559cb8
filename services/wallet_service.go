package services

import (
	"context"

	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Credit adds amount to the member's wallet inside tx and appends the entry.
// The wallet is created on first credit. A refund reverses a withdrawal, so it
// lowers total_withdrawn instead of raising total_earned.
func Credit(tx *gorm.DB, memberCode string, amount decimal.Decimal, category, description string) (*models.WalletEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	seed := models.Wallet{MemberCode: memberCode}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, aborted(err, "create wallet")
	}

	updates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
	}
	if category == models.CategoryRefund {
		updates["total_withdrawn"] = gorm.Expr("total_withdrawn - ?", amount)
	} else {
		updates["total_earned"] = gorm.Expr("total_earned + ?", amount)
	}

	res := tx.Model(&models.Wallet{}).Where("member_code = ?", memberCode).UpdateColumns(updates)
	if res.Error != nil {
		return nil, aborted(res.Error, "credit wallet")
	}

	return appendEntry(tx, memberCode, models.EntryCredit, amount, category, description)
}

// Debit removes amount from the member's wallet inside tx. The balance guard
// is part of the UPDATE itself: a debit that would go negative touches no row
// and leaves no entry.
func Debit(tx *gorm.DB, memberCode string, amount decimal.Decimal, category, description string) (*models.WalletEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	updates := map[string]interface{}{
		"balance": gorm.Expr("balance - ?", amount),
	}
	if category == models.CategoryWithdrawal {
		updates["total_withdrawn"] = gorm.Expr("total_withdrawn + ?", amount)
	}

	res := tx.Model(&models.Wallet{}).
		Where("member_code = ? AND balance >= ?", memberCode, amount).
		UpdateColumns(updates)
	if res.Error != nil {
		return nil, aborted(res.Error, "debit wallet")
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientBalance
	}

	return appendEntry(tx, memberCode, models.EntryDebit, amount, category, description)
}

func appendEntry(tx *gorm.DB, memberCode, entryType string, amount decimal.Decimal, category, description string) (*models.WalletEntry, error) {
	var wallet models.Wallet
	if err := tx.Where("member_code = ?", memberCode).First(&wallet).Error; err != nil {
		return nil, aborted(err, "reload wallet")
	}

	entry := models.WalletEntry{
		WalletID:     wallet.ID,
		MemberCode:   memberCode,
		Type:         entryType,
		Amount:       amount,
		Category:     category,
		Description:  description,
		BalanceAfter: wallet.Balance,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, aborted(err, "append wallet entry")
	}
	return &entry, nil
}

type WalletView struct {
	Wallet  models.Wallet        `json:"wallet"`
	Entries []models.WalletEntry `json:"entries"`
}

// GetWallet returns the member's wallet (zero-valued when none exists yet) and
// its newest entries.
func GetWallet(ctx context.Context, memberCode string, limit int) (*WalletView, error) {
	db := database.DB.WithContext(ctx)

	view := WalletView{Wallet: models.Wallet{MemberCode: memberCode}}
	err := db.Where("member_code = ?", memberCode).First(&view.Wallet).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, aborted(err, "load wallet")
	}

	if limit <= 0 {
		limit = 20
	}
	if err := db.Where("member_code = ?", memberCode).
		Order("created_at desc").Limit(limit).
		Find(&view.Entries).Error; err != nil {
		return nil, aborted(err, "load wallet entries")
	}
	return &view, nil
}

// ReplayBalance sums the signed entries of a member's wallet.
func ReplayBalance(tx *gorm.DB, memberCode string) (decimal.Decimal, error) {
	var entries []models.WalletEntry
	if err := tx.Where("member_code = ?", memberCode).Find(&entries).Error; err != nil {
		return decimal.Zero, aborted(err, "load wallet entries")
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Signed())
	}
	return sum, nil
}

type LedgerMismatch struct {
	MemberCode string          `json:"member_code"`
	Balance    decimal.Decimal `json:"balance"`
	Replayed   decimal.Decimal `json:"replayed"`
}

// AuditLedgers replays every wallet and reports those whose stored balance
// drifted from the sum of their entries.
func AuditLedgers(ctx context.Context) ([]LedgerMismatch, error) {
	db := database.DB.WithContext(ctx)

	var wallets []models.Wallet
	if err := db.Find(&wallets).Error; err != nil {
		return nil, aborted(err, "load wallets")
	}

	var mismatches []LedgerMismatch
	for _, w := range wallets {
		replayed, err := ReplayBalance(db, w.MemberCode)
		if err != nil {
			return nil, err
		}
		if !replayed.Equal(w.Balance) {
			mismatches = append(mismatches, LedgerMismatch{MemberCode: w.MemberCode, Balance: w.Balance, Replayed: replayed})
		}
	}
	return mismatches, nil
}
