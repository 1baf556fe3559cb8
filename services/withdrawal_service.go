package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/metrics"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/anjiri1684/matrix_mlm/notifications"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestWithdrawal debits the wallet and opens a pending request with a copy
// of the member's bank details, in one transaction.
func RequestWithdrawal(ctx context.Context, memberCode string, amount decimal.Decimal) (*models.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(config.Business.MinWithdrawal()) {
		return nil, ErrBelowMinimumWithdrawal
	}

	var withdrawal models.Withdrawal
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("member_code = ?", memberCode).First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return aborted(err, "load member")
		}
		if !member.Bank.Complete() || !member.Bank.Verified {
			return ErrKYCNotVerified
		}

		withdrawal = models.Withdrawal{
			ID:          uuid.New(),
			MemberCode:  memberCode,
			Amount:      amount,
			Status:      models.WithdrawalPending,
			Bank:        member.Bank,
			RequestedAt: time.Now(),
		}
		if _, err := Debit(tx, memberCode, amount, models.CategoryWithdrawal,
			fmt.Sprintf("Withdrawal request %s", withdrawal.ID)); err != nil {
			return err
		}
		if err := tx.Create(&withdrawal).Error; err != nil {
			return aborted(err, "create withdrawal")
		}
		return nil
	})
	if err != nil {
		return nil, aborted(err, "request withdrawal")
	}

	log.WithFields(log.Fields{
		"member_code":   memberCode,
		"withdrawal_id": withdrawal.ID,
		"amount":        amount.String(),
	}).Info("withdrawal requested")
	return &withdrawal, nil
}

type ResolveInput struct {
	Decision      string `json:"decision"`
	Remark        string `json:"remark"`
	TransactionID string `json:"transaction_id"`
}

// ResolveWithdrawal moves a pending request to approved or rejected exactly
// once. A rejection refunds the amount in the same transaction.
func ResolveWithdrawal(ctx context.Context, withdrawalID uuid.UUID, in ResolveInput) (*models.Withdrawal, error) {
	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	if decision != models.WithdrawalApproved && decision != models.WithdrawalRejected {
		return nil, ErrInvalidDecision
	}

	var withdrawal models.Withdrawal
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", withdrawalID).First(&withdrawal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return aborted(err, "load withdrawal")
		}
		if withdrawal.Status != models.WithdrawalPending {
			return ErrAlreadyProcessed
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       decision,
			"processed_at": now,
		}
		if in.Remark != "" {
			updates["admin_remark"] = in.Remark
		}
		if decision == models.WithdrawalApproved && in.TransactionID != "" {
			updates["transaction_id"] = in.TransactionID
		}

		// The status guard in the WHERE makes a racing second resolve touch
		// nothing even where row locks are unavailable.
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalPending).
			Updates(updates)
		if res.Error != nil {
			return aborted(res.Error, "update withdrawal")
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		if decision == models.WithdrawalRejected {
			if _, err := Credit(tx, withdrawal.MemberCode, withdrawal.Amount, models.CategoryRefund,
				fmt.Sprintf("Refund for rejected withdrawal %s", withdrawal.ID)); err != nil {
				return err
			}
		}

		return tx.Where("id = ?", withdrawalID).First(&withdrawal).Error
	})
	if err != nil {
		return nil, aborted(err, "resolve withdrawal")
	}

	metrics.WithdrawalsResolvedTotal.WithLabelValues(decision).Inc()
	log.WithFields(log.Fields{
		"withdrawal_id": withdrawal.ID,
		"member_code":   withdrawal.MemberCode,
		"status":        decision,
	}).Info("withdrawal resolved")

	if notifications.EmailClient != nil {
		go notifyWithdrawalDecision(withdrawal)
	}
	return &withdrawal, nil
}

func notifyWithdrawalDecision(w models.Withdrawal) {
	var member models.Member
	if err := database.DB.Select("full_name", "email").Where("member_code = ?", w.MemberCode).First(&member).Error; err != nil {
		log.WithField("member_code", w.MemberCode).Warnf("withdrawal mail skipped: %v", err)
		return
	}
	remark := ""
	if w.AdminRemark != nil {
		remark = *w.AdminRemark
	}
	subject, body := notifications.WithdrawalDecisionEmail(member.FullName, w.Status,
		w.Amount.StringFixed(2)+" "+config.Business.Currency, remark)
	notifications.SendEmail(member.FullName, member.Email, subject, body)
}

// ListMemberWithdrawals returns the member's requests, newest first.
func ListMemberWithdrawals(ctx context.Context, memberCode string) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	if err := database.DB.WithContext(ctx).Where("member_code = ?", memberCode).
		Order("requested_at desc").Find(&list).Error; err != nil {
		return nil, aborted(err, "list withdrawals")
	}
	return list, nil
}

// ListWithdrawals is the admin view. An empty status lists everything.
func ListWithdrawals(ctx context.Context, status string) ([]models.Withdrawal, error) {
	q := database.DB.WithContext(ctx).Preload("Member").Order("requested_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Withdrawal
	if err := q.Find(&list).Error; err != nil {
		return nil, aborted(err, "list withdrawals")
	}
	return list, nil
}

// StalePendingWithdrawals returns pending requests older than cutoff.
func StalePendingWithdrawals(ctx context.Context, cutoff time.Time) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	if err := database.DB.WithContext(ctx).
		Where("status = ? AND requested_at < ?", models.WithdrawalPending, cutoff).
		Order("requested_at asc").Find(&list).Error; err != nil {
		return nil, aborted(err, "list stale withdrawals")
	}
	return list, nil
}
